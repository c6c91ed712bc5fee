package scene

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"glass-trio", "Glass Trio"},
		{"random_spheres", "Random Spheres"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestParseScriptMetadata(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected SceneInfo
	}{
		{
			name: "complete.zy",
			content: `// name: Glass Trio
// description: Three glass spheres
// group: Glass

(sphere (vec3 0 0 -1) 0.5 (dielectric 1.5))`,
			expected: SceneInfo{
				ID:          "complete",
				DisplayName: "Glass Trio",
				Description: "Three glass spheres",
				Group:       "Glass",
				Type:        "script",
			},
		},
		{
			name: "semicolon_comments.zy",
			content: `;; name: Lisp Style
; description: Semicolon header

(camera :width 10)`,
			expected: SceneInfo{
				ID:          "semicolon_comments",
				DisplayName: "Lisp Style",
				Description: "Semicolon header",
				Group:       ScriptGroup,
				Type:        "script",
			},
		},
		{
			name:    "no-metadata.zy",
			content: `(camera :width 10)`,
			expected: SceneInfo{
				ID:          "no-metadata",
				DisplayName: "No Metadata",
				Group:       ScriptGroup,
				Type:        "script",
			},
		},
		{
			name: "after-code.zy",
			content: `(camera :width 10)
// name: Ignored`,
			expected: SceneInfo{
				ID:          "after-code",
				DisplayName: "After Code",
				Group:       ScriptGroup,
				Type:        "script",
			},
		},
		{
			name: "empty-values.zy",
			content: `// name:
// just a comment
// Description:   Mixed Case Key  `,
			expected: SceneInfo{
				ID:          "empty-values",
				DisplayName: "Empty Values",
				Description: "Mixed Case Key",
				Group:       ScriptGroup,
				Type:        "script",
			},
		},
	}

	dir := t.TempDir()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeScript(t, dir, tc.name, tc.content)

			result, err := ParseScriptMetadata(path)
			if err != nil {
				t.Fatalf("ParseScriptMetadata() error: %v", err)
			}

			tc.expected.FilePath = path
			if result != tc.expected {
				t.Errorf("ParseScriptMetadata() = %+v, want %+v", result, tc.expected)
			}
		})
	}
}

func TestParseScriptMetadata_MissingFile(t *testing.T) {
	result, err := ParseScriptMetadata("nonexistent.zy")
	if err != nil {
		t.Errorf("ParseScriptMetadata() should handle missing files gracefully: %v", err)
	}
	if result.ID != "nonexistent" || result.DisplayName != "Nonexistent" {
		t.Errorf("Expected fallback values, got %+v", result)
	}
}

func TestListScriptScenes(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "zebra.zy", "// name: Zebra\n")
	writeScript(t, dir, "apple.zy", "// name: Apple\n")
	writeScript(t, dir, "notes.txt", "// name: Not A Scene\n")

	scenes, err := ListScriptScenes(dir)
	if err != nil {
		t.Fatalf("ListScriptScenes() error: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("Expected 2 scenes, got %d", len(scenes))
	}
	if scenes[0].DisplayName != "Apple" || scenes[1].DisplayName != "Zebra" {
		t.Errorf("Expected scenes sorted by display name, got %q, %q", scenes[0].DisplayName, scenes[1].DisplayName)
	}
}

func TestListScriptScenes_MissingDirectory(t *testing.T) {
	for _, dir := range []string{"", filepath.Join(t.TempDir(), "missing")} {
		scenes, err := ListScriptScenes(dir)
		if err != nil {
			t.Errorf("ListScriptScenes(%q) error: %v", dir, err)
		}
		if scenes == nil || len(scenes) != 0 {
			t.Errorf("ListScriptScenes(%q) = %v, want empty slice", dir, scenes)
		}
	}
}

func TestListAllScenes(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "a.zy", "// group: Zeta\n")
	writeScript(t, dir, "b.zy", "// group: Alpha\n")
	writeScript(t, dir, "c.zy", "(camera)\n")

	response, err := ListAllScenes(dir)
	if err != nil {
		t.Fatalf("ListAllScenes() error: %v", err)
	}

	var names []string
	for _, group := range response.Groups {
		names = append(names, group.Name)
	}
	expected := []string{BuiltinGroup, "Alpha", ScriptGroup, "Zeta"}
	if len(names) != len(expected) {
		t.Fatalf("Groups = %v, want %v", names, expected)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("Group %d = %q, want %q", i, names[i], expected[i])
		}
	}

	builtIn := response.Groups[0]
	if len(builtIn.Scenes) != len(BuiltinScenes()) {
		t.Errorf("Built-in scenes count = %d, want %d", len(builtIn.Scenes), len(BuiltinScenes()))
	}
	for _, info := range builtIn.Scenes {
		if _, err := Create(info.ID); err != nil {
			t.Errorf("Built-in scene %q not creatable: %v", info.ID, err)
		}
	}
}

func TestListAllScenes_RepositoryScripts(t *testing.T) {
	response, err := ListAllScenes(ScriptsDir())
	if err != nil {
		t.Fatalf("ListAllScenes() error: %v", err)
	}

	for _, group := range response.Groups {
		if group.Name == "" {
			t.Error("Found group with empty name")
		}
		for _, info := range group.Scenes {
			if info.ID == "" || info.DisplayName == "" {
				t.Errorf("Scene missing ID or DisplayName: %+v", info)
			}
			if info.Type != "builtin" && info.Type != "script" {
				t.Errorf("Invalid scene type: %s", info.Type)
			}
			if info.Type == "script" {
				if info.FilePath == "" {
					t.Error("Script scene missing FilePath")
				}
				if _, err := NewScriptScene(info.FilePath); err != nil {
					t.Errorf("Script scene %s failed to load: %v", info.FilePath, err)
				}
			}
		}
	}
}
