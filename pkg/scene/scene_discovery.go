package scene

import (
	"fmt"
	"sort"
	"strings"
)

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier, passed to Create
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
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

const (
	groupRooms      = "Rooms"
	groupValidation = "Validation"
)

type builder func(width, height int) *Scene

type registration struct {
	info  SceneInfo
	build builder
}

var registry = []registration{
	{SceneInfo{ID: "default", Description: "Glass and chrome spheres in a lit room", Group: groupRooms}, NewDefaultScene},
	{SceneInfo{ID: "cornell", Description: "Closed white box lit by its ceiling", Group: groupRooms}, NewCornellScene},
	{SceneInfo{ID: "film", Description: "Soap bubble with thin-film interference", Group: groupRooms}, NewFilmScene},
	{SceneInfo{ID: "crater", Description: "Shapes carved by boolean difference, with depth of field", Group: groupRooms}, NewCraterScene},
	{SceneInfo{ID: "emissive-plane", Description: "Single emitter filling the view, renders to radiance 1", Group: groupValidation}, NewEmissivePlaneScene},
}

// List returns every built-in scene in registration order
func List() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(registry))
	for _, r := range registry {
		info := r.info
		info.DisplayName = titleCase(info.ID)
		scenes = append(scenes, info)
	}
	return scenes
}

// Create builds the named scene for an image of the given size
func Create(name string, width, height int) (*Scene, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	for _, r := range registry {
		if r.info.ID == name {
			return r.build(width, height), nil
		}
	}
	return nil, fmt.Errorf("unknown scene %q", name)
}

// ListAllScenes returns the built-in scenes grouped by category, rooms first
func ListAllScenes() ScenesResponse {
	var response ScenesResponse

	groupMap := make(map[string][]SceneInfo)
	for _, info := range List() {
		groupMap[info.Group] = append(groupMap[info.Group], info)
	}

	var groupNames []string
	for groupName := range groupMap {
		if groupName != groupRooms {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	if rooms, exists := groupMap[groupRooms]; exists {
		response.Groups = append(response.Groups, SceneGroup{Name: groupRooms, Scenes: rooms})
	}
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{Name: groupName, Scenes: groupMap[groupName]})
	}

	return response
}

// titleCase converts an identifier to title case
// e.g., "emissive-plane" -> "Emissive Plane"
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
