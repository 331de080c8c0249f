package server

import (
	"fmt"
	"net/http"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// InspectResponse describes the first object seen through a pixel
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// materialInfo extracts the parameters that matter for the material's kind
func materialInfo(mat material.Material) map[string]interface{} {
	properties := map[string]interface{}{
		"colour": vecArray(mat.Colour),
	}
	if !mat.Emission.IsZero() {
		properties["emission"] = vecArray(mat.Emission)
	}

	switch mat.Kind {
	case material.Diffuse:
		properties["roughness"] = mat.Roughness
	case material.Glass:
		properties["ior"] = mat.IOR
		properties["roughness"] = mat.Roughness
	case material.Film:
		properties["ior"] = mat.IOR
		properties["thicknessNm"] = mat.Thickness * 1e9
	}
	return properties
}

// geometryInfo extracts the defining parameters of a shape
func geometryInfo(shape geometry.Shape) map[string]interface{} {
	properties := make(map[string]interface{})

	switch shape.Kind {
	case geometry.SphereKind:
		properties["center"] = vecArray(shape.Center)
		properties["radius"] = shape.Radius
	case geometry.PlaneKind:
		properties["point"] = vecArray(shape.Point)
		properties["normal"] = vecArray(shape.Normal)
	case geometry.DifferenceKind:
		properties["base"] = map[string]interface{}{
			"type":       shape.Base.Kind.String(),
			"properties": geometryInfo(*shape.Base),
		}
		properties["cut"] = map[string]interface{}{
			"type":       shape.Cut.Kind.String(),
			"properties": geometryInfo(*shape.Cut),
		}
	}
	return properties
}

// inspectPixel casts a ray from the lens centre through the middle of pixel (x, y)
func inspectPixel(s *scene.Scene, width, height, x, y int) InspectResponse {
	u := (float64(x) + 0.5) / float64(width)
	v := (float64(y) + 0.5) / float64(height)
	ray := s.Camera.GetRay(u, v, s.Camera.CenterLens())

	obj, hit, ok := s.Intersect(ray)
	if !ok {
		return InspectResponse{Hit: false}
	}

	return InspectResponse{
		Hit:          true,
		MaterialType: obj.Material.Kind.String(),
		GeometryType: obj.Shape.Kind.String(),
		Point:        vecArray(ray.At(hit.Distance)),
		Normal:       vecArray(hit.Normal),
		Distance:     hit.Distance,
		Properties: map[string]interface{}{
			"material": materialInfo(obj.Material),
			"geometry": geometryInfo(obj.Shape),
		},
	}
}

// handleInspect reports the object under a pixel of a scene
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req := &RenderRequest{}
	if err := parseSceneParams(r, req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	query := r.URL.Query()
	if query.Get("x") == "" || query.Get("y") == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing pixel coordinates")
		return
	}
	x, err := parseIntParam(query, "x", 0, 0, req.Width-1)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	y, err := parseIntParam(query, "y", 0, 0, req.Height-1)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	sceneObj, err := scene.Create(req.Scene, req.Width, req.Height)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scene: %s", req.Scene))
		return
	}

	writeJSON(w, http.StatusOK, inspectPixel(sceneObj, req.Width, req.Height, x, y))
}
