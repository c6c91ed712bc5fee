package loaders

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalTimeout is the hard limit for evaluating a single scene script
const EvalTimeout = 5 * time.Second

// EvalError is a parse or runtime error in scene script source
type EvalError struct {
	Line    int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Material types produced by scene scripts
const (
	MaterialLambertian = "lambertian"
	MaterialMetal      = "metal"
	MaterialDielectric = "dielectric"
)

// CameraStatement holds the camera settings a script set explicitly
type CameraStatement struct {
	Floats map[string]float64   // width, aspect-ratio, samples, max-depth, vfov, defocus-angle, focus-distance
	Points map[string]core.Vec3 // look-from, look-at, up
}

// GetFloat returns a numeric camera setting if the script provided it
func (c *CameraStatement) GetFloat(name string) (float64, bool) {
	v, ok := c.Floats[name]
	return v, ok
}

// GetPoint returns a vector camera setting if the script provided it
func (c *CameraStatement) GetPoint(name string) (core.Vec3, bool) {
	v, ok := c.Points[name]
	return v, ok
}

// MaterialStatement is one material definition; spheres refer to it by index
type MaterialStatement struct {
	Type            string    // lambertian, metal or dielectric
	Albedo          core.Vec3 // lambertian and metal
	Fuzz            float64   // metal
	RefractiveIndex float64   // dielectric
}

// SphereStatement is one sphere definition
type SphereStatement struct {
	Center        core.Vec3
	Radius        float64
	MaterialIndex int // Index into ScriptScene.Materials
}

// ScriptScene contains all data produced by evaluating a scene script
type ScriptScene struct {
	Camera    CameraStatement
	Materials []MaterialStatement
	Spheres   []SphereStatement
}

func newScriptScene() *ScriptScene {
	return &ScriptScene{
		Camera: CameraStatement{
			Floats: make(map[string]float64),
			Points: make(map[string]core.Vec3),
		},
	}
}

type evalResult struct {
	scene *ScriptScene
	err   error
}

// errEvalCancelled unwinds a running script after its evaluation timed out
var errEvalCancelled = errors.New("evaluation cancelled")

// evalExited is called when an evaluation goroutine returns
var evalExited = func() {}

// LoadScript reads and evaluates a scene script file
func LoadScript(filename string) (*ScriptScene, error) {
	source, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene script: %w", err)
	}

	scene, err := EvaluateScript(string(source))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return scene, nil
}

// EvaluateScript runs scene script source in a fresh sandbox and returns what it declared.
// Script errors are returned as EvalError; panics and timeouts as plain errors.
func EvaluateScript(source string) (*ScriptScene, error) {
	return evaluateWithTimeout(source, EvalTimeout)
}

func evaluateWithTimeout(source string, timeout time.Duration) (*ScriptScene, error) {
	ch := make(chan evalResult, 1)
	var cancelled atomic.Bool

	go func() {
		defer evalExited()
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		scene, err := evaluate(source, &cancelled)
		ch <- evalResult{scene: scene, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.scene, res.err
	case <-timer.C:
		// The script stops at its next function call
		cancelled.Store(true)
		return nil, fmt.Errorf("evaluation timed out after %s", timeout)
	}
}

func evaluate(source string, cancelled *atomic.Bool) (*ScriptScene, error) {
	scene := newScriptScene()

	// Empty source is a valid script that declares nothing
	if strings.TrimSpace(source) == "" {
		return scene, nil
	}

	// Sandbox mode keeps scripts away from the filesystem and syscalls
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	env.AddPreHook(func(*zygo.Zlisp, string, []zygo.Sexp) {
		if cancelled.Load() {
			panic(errEvalCancelled)
		}
	})
	registerBuiltins(env, scene)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err)
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err)
	}

	return scene, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// parseZygomysError extracts line information from a zygomys error message
func parseZygomysError(err error) EvalError {
	msg := err.Error()

	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return EvalError{Line: line, Message: strings.TrimSpace(m[2])}
	}

	return EvalError{Message: strings.TrimSpace(msg)}
}
