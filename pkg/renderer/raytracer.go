package renderer

import (
	"fmt"
	"image"
	"math/rand"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// DefaultTileSize is the edge length of a square render tile in pixels
const DefaultTileSize = 64

// Raytracer renders whole passes of a scene at a fixed resolution
type Raytracer struct {
	scene        *scene.Scene
	width        int
	height       int
	integrator   integrator.Integrator
	tileRenderer *TileRenderer
}

// NewRaytracer creates a raytracer; a nil integrator selects a path tracer
// limited to the scene's recommended depth
func NewRaytracer(s *scene.Scene, width, height int, integratorInst integrator.Integrator) *Raytracer {
	if integratorInst == nil {
		integratorInst = integrator.NewPathTracer(s.Config.MaxDepth)
	}
	return &Raytracer{
		scene:        s,
		width:        width,
		height:       height,
		integrator:   integratorInst,
		tileRenderer: NewTileRenderer(s, integratorInst),
	}
}

// Width returns the image width in pixels
func (rt *Raytracer) Width() int { return rt.width }

// Height returns the image height in pixels
func (rt *Raytracer) Height() int { return rt.height }

// BeginPass draws the jitter and lens sample shared by every pixel of a pass
func (rt *Raytracer) BeginPass(sampler core.Sampler) PassState {
	jitter := sampler.Get2D()
	return PassState{
		Jitter: jitter,
		Lens:   rt.scene.Camera.PaintStart(sampler),
	}
}

// checkSize rejects a buffer whose resolution differs from the raytracer's
func (rt *Raytracer) checkSize(img *Image) error {
	if img.Width != rt.width || img.Height != rt.height {
		return fmt.Errorf("image is %dx%d, want %dx%d", img.Width, img.Height, rt.width, rt.height)
	}
	return nil
}

// TraceImage renders one full pass into img on the calling goroutine
func (rt *Raytracer) TraceImage(img *Image, sampler core.Sampler) (RenderStats, error) {
	if err := rt.checkSize(img); err != nil {
		return RenderStats{}, err
	}
	pass := rt.BeginPass(sampler)
	stats := rt.tileRenderer.RenderTileBounds(image.Rect(0, 0, rt.width, rt.height), img, pass, sampler)
	img.CompletePass()
	stats.Passes = img.Passes
	return stats, nil
}

// TraceImageTiled renders one full pass into img split across tiles rendered by
// numWorkers goroutines. Each tile is seeded from random in tile order, so the
// result depends only on random's state.
func (rt *Raytracer) TraceImageTiled(img *Image, random *rand.Rand, tileSize, numWorkers int) (RenderStats, error) {
	if err := rt.checkSize(img); err != nil {
		return RenderStats{}, err
	}
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	pass := rt.BeginPass(core.NewRandomSampler(random))

	tiles := NewTileGrid(rt.width, rt.height, tileSize, random)

	pool := NewWorkerPool(rt.tileRenderer, len(tiles), numWorkers)
	pool.Start()
	for i, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, Image: img, Pass: pass, TaskID: i})
	}

	stats := RenderStats{}
	for range tiles {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		stats.TotalPixels += result.Stats.TotalPixels
		stats.TotalSamples += result.Stats.TotalSamples
	}
	pool.Stop()

	img.CompletePass()
	stats.Passes = img.Passes
	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
	return stats, nil
}
