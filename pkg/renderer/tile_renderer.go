package renderer

import (
	"image"
	"math/rand"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// PassState is the randomness shared by every pixel of one pass: a single
// sub-pixel jitter and a single lens sample
type PassState struct {
	Jitter core.Vec2
	Lens   geometry.LensSample
}

// TileRenderer handles the actual rendering of individual tiles using an integrator
type TileRenderer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
}

// NewTileRenderer creates a new tile renderer with the given scene and integrator
func NewTileRenderer(s *scene.Scene, integratorInst integrator.Integrator) *TileRenderer {
	return &TileRenderer{
		scene:      s,
		integrator: integratorInst,
	}
}

// RenderTileBounds traces one ray per pixel within bounds and accumulates the radiance into img
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, img *Image, pass PassState, sampler core.Sampler) RenderStats {
	camera := tr.scene.Camera
	width, height := float64(img.Width), float64(img.Height)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			u := (float64(x) + pass.Jitter.X) / width
			v := (float64(y) + pass.Jitter.Y) / height
			ray := camera.GetRay(u, v, pass.Lens)
			img.Add(x, y, tr.integrator.Trace(ray, tr.scene, sampler))
		}
	}

	pixels := bounds.Dx() * bounds.Dy()
	return RenderStats{
		TotalPixels:    pixels,
		TotalSamples:   pixels,
		AverageSamples: 1,
	}
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID     int             // Unique tile identifier
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	Random *rand.Rand      // Tile-specific random generator for deterministic results
}

// NewTile creates a new tile with the specified bounds and random seed
func NewTile(id int, bounds image.Rectangle, seed int64) *Tile {
	return &Tile{
		ID:     id,
		Bounds: bounds,
		Random: rand.New(rand.NewSource(seed)),
	}
}

// NewTileGrid creates a grid of tiles covering the entire image in row-major order.
// Tiles are seeded from random in the same order.
func NewTileGrid(width, height, tileSize int, random *rand.Rand) []*Tile {
	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1), random.Int63()))
			tileID++
		}
	}

	return tiles
}
