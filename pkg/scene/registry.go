package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-recursive-raytracer/pkg/renderer"
)

// ScriptExtension is the file extension of scene scripts
const ScriptExtension = ".zy"

// scriptDirs are searched in order when a scene is requested by bare name
var scriptDirs = []string{"scenes", "../scenes", "../../scenes"}

// Create resolves a scene by name. Built-in scenes win; otherwise name is
// treated as a script path, or as a script in the scenes directory.
func Create(name string, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	switch name {
	case "default", "":
		return NewDefaultScene(cameraOverrides...), nil
	case "materials":
		return NewMaterialsScene(cameraOverrides...), nil
	case "random-spheres":
		return NewRandomSpheresScene(RandomSpheresSeed, cameraOverrides...), nil
	}

	path, err := FindScript(name)
	if err != nil {
		return nil, err
	}
	return NewScriptScene(path, cameraOverrides...)
}

// FindScript locates the script file for a scene name or path
func FindScript(name string) (string, error) {
	if strings.HasSuffix(name, ScriptExtension) {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}

	base := strings.TrimSuffix(name, ScriptExtension)
	for _, dir := range scriptDirs {
		candidate := filepath.Join(dir, base+ScriptExtension)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unknown scene %q", name)
}

// ScriptsDir returns the first scenes directory that exists, or "" if none does
func ScriptsDir() string {
	for _, dir := range scriptDirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}
