package scene

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scene group names
const (
	BuiltinGroup = "Built-in Scenes"
	ScriptGroup  = "Script Scenes"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Name accepted by Create
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "script"
	FilePath    string `json:"filePath"`    // Path to script file (script type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// BuiltinScenes lists the scenes Create knows without a script
func BuiltinScenes() []SceneInfo {
	return []SceneInfo{
		{
			ID:          "default",
			DisplayName: "Default Scene",
			Description: "Diffuse sphere resting on a large ground sphere",
			Group:       BuiltinGroup,
			Type:        "builtin",
		},
		{
			ID:          "materials",
			DisplayName: "Materials",
			Description: "Diffuse, hollow glass and fuzzy metal spheres with depth of field",
			Group:       BuiltinGroup,
			Type:        "builtin",
		},
		{
			ID:          "random-spheres",
			DisplayName: "Random Spheres",
			Description: "Field of small random spheres around three large ones",
			Group:       BuiltinGroup,
			Type:        "builtin",
		},
	}
}

// ListScriptScenes scans dir for scene scripts. A missing directory yields an empty list.
func ListScriptScenes(dir string) ([]SceneInfo, error) {
	scenes := []SceneInfo{}
	if dir == "" {
		return scenes, nil
	}
	if _, err := os.Stat(dir); err != nil {
		return scenes, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*"+ScriptExtension))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	for _, filePath := range files {
		info, err := ParseScriptMetadata(filePath)
		if err != nil {
			log.Printf("Warning: failed to parse metadata for %s: %v", filePath, err)
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})
	return scenes, nil
}

// ParseScriptMetadata extracts metadata from the header comments of a script:
//
//	// name: Glass Trio
//	// description: Three glass spheres
//	// group: Glass
//
// Both // and ; comment styles are accepted. Parsing stops at the first
// non-comment line.
func ParseScriptMetadata(filePath string) (SceneInfo, error) {
	nameWithoutExt := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))

	info := SceneInfo{
		ID:          nameWithoutExt,
		DisplayName: titleCase(nameWithoutExt),
		Group:       ScriptGroup,
		Type:        "script",
		FilePath:    filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		// Unreadable files keep their fallback values
		return info, nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var content string
		switch {
		case strings.HasPrefix(line, "//"):
			content = strings.TrimPrefix(line, "//")
		case strings.HasPrefix(line, ";"):
			content = strings.TrimLeft(line, ";")
		default:
			return info, scanner.Err()
		}

		key, value, ok := strings.Cut(content, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "name":
			info.DisplayName = value
		case "description":
			info.Description = value
		case "group":
			info.Group = value
		}
	}

	return info, scanner.Err()
}

// ListAllScenes returns built-in scenes followed by the scripts found in dir, grouped
func ListAllScenes(dir string) (ScenesResponse, error) {
	var response ScenesResponse

	scriptScenes, err := ListScriptScenes(dir)
	if err != nil {
		return response, fmt.Errorf("failed to list script scenes: %w", err)
	}

	allScenes := append(BuiltinScenes(), scriptScenes...)

	groupMap := make(map[string][]SceneInfo)
	for _, scene := range allScenes {
		groupMap[scene.Group] = append(groupMap[scene.Group], scene)
	}

	// Built-in first, then alphabetical
	var groupNames []string
	for groupName := range groupMap {
		if groupName != BuiltinGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	if builtInGroup, exists := groupMap[BuiltinGroup]; exists {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   BuiltinGroup,
			Scenes: builtInGroup,
		})
	}
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}

	return response, nil
}

// titleCase converts a filename-style string to title case
// e.g., "glass-trio" -> "Glass Trio"
func titleCase(s string) string {
	// Replace hyphens and underscores with spaces
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	// Title case each word
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
