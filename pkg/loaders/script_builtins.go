package loaders

import (
	"fmt"
	"sort"
	"strings"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	zygo "github.com/glycerine/zygomys/zygo"
	"golang.org/x/image/colornames"
)

// preprocessSource rewrites scene script source for zygomys:
//
//  1. :keyword becomes the string literal "__kw_keyword"
//  2. kebab-case identifiers become snake_case (zygomys reads '-' as minus)
//  3. ; line comments become // comments
//
// String literals are left untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			// Copy string literal, honoring escapes
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}

		case b[i] == ';':
			result = append(result, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}

		case b[i] == '/' && i+1 < len(b) && b[i+1] == '/':
			// Already a zygomys comment; copy it so keywords inside stay as written
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}

		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j

		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			result = append(result, '_')
			i++

		default:
			result = append(result, b[i])
			i++
		}
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// sexpVec3 carries a point, direction or color between builtins
type sexpVec3 struct {
	vec core.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpMaterial refers to an entry in ScriptScene.Materials
type sexpMaterial struct {
	index int
	kind  string
}

func (m *sexpMaterial) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s #%d)", m.kind, m.index)
}
func (m *sexpMaterial) Type() *zygo.RegisteredType { return nil }

// kwPrefix is the marker prepended to keyword names by preprocessSource
const kwPrefix = "__kw_"

func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds a parsed mixed positional and keyword argument list
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		if name, ok := isKW(args[i]); ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i++
			} else {
				result.kw[name] = zygo.SexpNull
			}
			continue
		}
		result.positional = append(result.positional, args[i])
	}
	return result
}

// lookup returns the keyword argument name, falling back to positional slot pos (-1 for none)
func (a kwArgs) lookup(name string, pos int) (zygo.Sexp, bool) {
	if v, ok := a.kw[name]; ok {
		return v, true
	}
	if pos >= 0 && pos < len(a.positional) {
		return a.positional[pos], true
	}
	return nil, false
}

// checkKeywords rejects keywords a builtin does not understand
func (a kwArgs) checkKeywords(allowed ...string) error {
	known := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		known[name] = true
	}
	var unknown []string
	for name := range a.kw {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown keyword(s) :%s", strings.Join(unknown, " :"))
	}
	return nil
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (core.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return core.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toColor accepts a vec3/rgb value or a CSS color name
func toColor(s zygo.Sexp) (core.Vec3, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return NamedColor(str.S)
	}
	return toVec3(s)
}

func toMaterial(s zygo.Sexp) (*sexpMaterial, error) {
	if m, ok := s.(*sexpMaterial); ok {
		return m, nil
	}
	return nil, fmt.Errorf("expected material, got %T (%s)", s, s.SexpString(nil))
}

// NamedColor returns a CSS/SVG color name as a linear color in [0, 1]
func NamedColor(name string) (core.Vec3, error) {
	c, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return core.Vec3{}, fmt.Errorf("unknown color name %q", name)
	}
	return core.NewVec3(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0), nil
}

// ColorNames lists every name NamedColor accepts, sorted
func ColorNames() []string {
	names := make([]string, 0, len(colornames.Map))
	for name := range colornames.Map {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// threeFloats reads exactly three numeric positional arguments
func threeFloats(fn string, args []zygo.Sexp) (core.Vec3, error) {
	if len(args) != 3 {
		return core.Vec3{}, fmt.Errorf("%s requires 3 numbers, got %d arguments", fn, len(args))
	}
	var xyz [3]float64
	for i, arg := range args {
		f, err := toFloat64(arg)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("%s: argument %d: %w", fn, i+1, err)
		}
		xyz[i] = f
	}
	return core.NewVec3(xyz[0], xyz[1], xyz[2]), nil
}

// cameraFloatKeys and cameraPointKeys are the settings accepted by (camera ...)
var (
	cameraFloatKeys = []string{"width", "aspect-ratio", "samples", "max-depth", "vfov", "defocus-angle", "focus-distance"}
	cameraPointKeys = []string{"look-from", "look-at", "up"}
)

// registerBuiltins installs the scene description builtins. Each builtin records
// into scene as it runs, so evaluation order is declaration order.
func registerBuiltins(env *zygo.Zlisp, scene *ScriptScene) {

	// (vec3 x y z) and (rgb r g b)
	for _, fn := range []string{"vec3", "rgb"} {
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			v, err := threeFloats(name, args)
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpVec3{vec: v}, nil
		})
	}

	// (color "steelblue")
	env.AddFunction("color", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("color requires a name argument")
		}
		s, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("color: %w", err)
		}
		c, err := NamedColor(s)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("color: %w", err)
		}
		return &sexpVec3{vec: c}, nil
	})

	// (camera :width 400 :aspect-ratio 1.78 :look-from (vec3 13 2 3) ...)
	env.AddFunction("camera", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("camera takes keyword arguments only")
		}
		if err := pa.checkKeywords(append(cameraFloatKeys, cameraPointKeys...)...); err != nil {
			return zygo.SexpNull, fmt.Errorf("camera: %w", err)
		}

		for _, key := range cameraFloatKeys {
			if v, ok := pa.kw[key]; ok {
				f, err := toFloat64(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("camera: %s: %w", key, err)
				}
				scene.Camera.Floats[key] = f
			}
		}
		for _, key := range cameraPointKeys {
			if v, ok := pa.kw[key]; ok {
				p, err := toVec3(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("camera: %s: %w", key, err)
				}
				scene.Camera.Points[key] = p
			}
		}
		return zygo.SexpNull, nil
	})

	addMaterial := func(stmt MaterialStatement) zygo.Sexp {
		scene.Materials = append(scene.Materials, stmt)
		return &sexpMaterial{index: len(scene.Materials) - 1, kind: stmt.Type}
	}

	// (lambertian (rgb 0.5 0.5 0.5)) or (lambertian :albedo "olive")
	env.AddFunction("lambertian", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.checkKeywords("albedo"); err != nil {
			return zygo.SexpNull, fmt.Errorf("lambertian: %w", err)
		}
		v, ok := pa.lookup("albedo", 0)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("lambertian requires an albedo")
		}
		albedo, err := toColor(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("lambertian: albedo: %w", err)
		}
		return addMaterial(MaterialStatement{Type: MaterialLambertian, Albedo: albedo}), nil
	})

	// (metal (rgb 0.8 0.6 0.2) 0.3) or (metal :albedo ... :fuzz 0.3)
	env.AddFunction("metal", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.checkKeywords("albedo", "fuzz"); err != nil {
			return zygo.SexpNull, fmt.Errorf("metal: %w", err)
		}
		v, ok := pa.lookup("albedo", 0)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("metal requires an albedo")
		}
		albedo, err := toColor(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("metal: albedo: %w", err)
		}
		stmt := MaterialStatement{Type: MaterialMetal, Albedo: albedo}
		if v, ok := pa.lookup("fuzz", 1); ok {
			fuzz, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("metal: fuzz: %w", err)
			}
			stmt.Fuzz = fuzz
		}
		return addMaterial(stmt), nil
	})

	// (dielectric 1.5) or (dielectric :ior 1.5)
	env.AddFunction("dielectric", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.checkKeywords("ior"); err != nil {
			return zygo.SexpNull, fmt.Errorf("dielectric: %w", err)
		}
		v, ok := pa.lookup("ior", 0)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("dielectric requires an index of refraction")
		}
		ior, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("dielectric: ior: %w", err)
		}
		if ior <= 0 {
			return zygo.SexpNull, fmt.Errorf("dielectric: ior must be positive, got %g", ior)
		}
		return addMaterial(MaterialStatement{Type: MaterialDielectric, RefractiveIndex: ior}), nil
	})

	// (sphere (vec3 0 0 -1) 0.5 mat) or (sphere :center ... :radius ... :material ...)
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.checkKeywords("center", "radius", "material"); err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}

		v, ok := pa.lookup("center", 0)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("sphere requires a center")
		}
		center, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: center: %w", err)
		}

		v, ok = pa.lookup("radius", 1)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("sphere requires a radius")
		}
		radius, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
		}
		if radius == 0 {
			return zygo.SexpNull, fmt.Errorf("sphere: radius must be non-zero")
		}

		v, ok = pa.lookup("material", 2)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("sphere requires a material")
		}
		mat, err := toMaterial(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: material: %w", err)
		}

		scene.Spheres = append(scene.Spheres, SphereStatement{
			Center:        center,
			Radius:        radius,
			MaterialIndex: mat.index,
		})
		return zygo.SexpNull, nil
	})
}
