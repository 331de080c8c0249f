package server

import (
	"net/http"

	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// Size limits shared by every endpoint that builds a scene
const (
	minImageSize = 16
	maxImageSize = 2000
)

// RenderRequest holds the validated query parameters of a render session
type RenderRequest struct {
	Scene     string
	Width     int
	Height    int
	Workers   int     // 0 = CPU count
	MaxPasses int     // 0 = until stopped
	Exposure  float64 // 0 = scene default
	Tone      string  // "" = scene default
	Codec     string
	Paused    bool
}

// parseSceneParams parses the parameters needed to build a scene
func parseSceneParams(r *http.Request, req *RenderRequest) error {
	query := r.URL.Query()

	req.Scene = query.Get("scene")
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 320, minImageSize, maxImageSize); err != nil {
		return err
	}
	if req.Height, err = parseIntParam(query, "height", 240, minImageSize, maxImageSize); err != nil {
		return err
	}
	return nil
}

// parseRenderRequest parses and validates the parameters of a render session
func parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	req := &RenderRequest{}
	if err := parseSceneParams(r, req); err != nil {
		return nil, err
	}

	query := r.URL.Query()
	var err error
	if req.Workers, err = parseIntParam(query, "workers", 0, 0, 256); err != nil {
		return nil, err
	}
	if req.MaxPasses, err = parseIntParam(query, "maxPasses", 0, 0, 1000000); err != nil {
		return nil, err
	}
	if req.Exposure, err = parseFloatParam(query, "exposure", 0, 0.001, 1000); err != nil {
		return nil, err
	}
	if req.Paused, err = parseBoolParam(query, "paused", false); err != nil {
		return nil, err
	}

	req.Tone = query.Get("tone")
	if req.Tone != "" {
		if _, err := renderer.ParseToneMode(req.Tone); err != nil {
			return nil, err
		}
	}

	req.Codec = query.Get("codec")
	if req.Codec == "" {
		req.Codec = CodecPNG
	}
	if err := checkCodec(req.Codec); err != nil {
		return nil, err
	}

	return req, nil
}

// progressiveConfig resolves scene defaults into a renderer configuration
func (req *RenderRequest) progressiveConfig(s *scene.Scene) renderer.ProgressiveConfig {
	config := renderer.DefaultProgressiveConfig()
	config.NumWorkers = req.Workers
	config.MaxPasses = req.MaxPasses

	config.Exposure = s.Config.Exposure
	if req.Exposure > 0 {
		config.Exposure = req.Exposure
	}

	tone := s.Config.ToneMode
	if req.Tone != "" {
		tone = req.Tone
	}
	if mode, err := renderer.ParseToneMode(tone); err == nil {
		config.ToneMode = mode
	}
	return config
}
