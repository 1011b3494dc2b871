package loaders

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/scene"
)

// Default group names for discovered scene files
const (
	FileGroup     = "Scene Files"
	ExportedGroup = "Exported Scenes"
)

// FileScenePrefix marks scene IDs that refer to files
const FileScenePrefix = "file:"

// ListSceneFiles scans dir for .yaml/.yml scene files and returns their metadata.
// A missing directory yields an empty list.
func ListSceneFiles(dir string, logger core.Logger) ([]scene.SceneInfo, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []scene.SceneInfo{}, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
		}
		files = append(files, matches...)
	}

	scenes := []scene.SceneInfo{}
	for _, filePath := range files {
		info, err := ParseSceneFileMetadata(filePath)
		if err != nil {
			logger.Printf("Warning: failed to parse metadata for %s: %v\n", filePath, err)
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ParseSceneFileMetadata extracts metadata from scene file header comments:
//
//	# Scene: Glass Study
//	# Description: Three glass spheres
//	# Group: Experiments
func ParseSceneFileMetadata(filePath string) (scene.SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	info := scene.SceneInfo{
		ID:          FileScenePrefix + nameWithoutExt,
		DisplayName: titleCase(nameWithoutExt),
		Group:       FileGroup,
		Type:        scene.TypeFile,
		FilePath:    filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		return info, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "#") {
			break
		}

		content := strings.TrimSpace(strings.TrimPrefix(line, "#"))
		switch {
		case strings.HasPrefix(content, "Scene:"):
			info.DisplayName = strings.TrimSpace(strings.TrimPrefix(content, "Scene:"))
		case strings.HasPrefix(content, "Description:"):
			info.Description = strings.TrimSpace(strings.TrimPrefix(content, "Description:"))
		case strings.HasPrefix(content, "Group:"):
			info.Group = strings.TrimSpace(strings.TrimPrefix(content, "Group:"))
		}
	}

	return info, scanner.Err()
}

// ResolveSceneFile maps a file:<name> scene ID to a path inside dir
func ResolveSceneFile(dir, id string) (string, bool) {
	name, ok := strings.CutPrefix(id, FileScenePrefix)
	if !ok || name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", false
	}
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// ListAllScenes returns the built-in scenes and the scene files in dir, grouped by category.
// Built-in scenes come first, then the other groups alphabetically.
func ListAllScenes(dir string, logger core.Logger) (scene.ScenesResponse, error) {
	var response scene.ScenesResponse

	fileScenes, err := ListSceneFiles(dir, logger)
	if err != nil {
		return response, fmt.Errorf("failed to list scene files: %w", err)
	}

	allScenes := append(scene.List(), fileScenes...)

	groupMap := make(map[string][]scene.SceneInfo)
	for _, info := range allScenes {
		groupMap[info.Group] = append(groupMap[info.Group], info)
	}

	var groupNames []string
	for groupName := range groupMap {
		if groupName != scene.BuiltinGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	if builtInGroup, exists := groupMap[scene.BuiltinGroup]; exists {
		response.Groups = append(response.Groups, scene.SceneGroup{
			Name:   scene.BuiltinGroup,
			Scenes: builtInGroup,
		})
	}

	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, scene.SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}

	return response, nil
}

// titleCase converts a filename-style string to title case
// e.g., "glass-study" -> "Glass Study"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
