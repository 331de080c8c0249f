package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// ErrPassLimit is returned by Step once MaxPasses passes have been rendered
var ErrPassLimit = errors.New("pass limit reached")

// ErrRunning is returned by Start while workers are already running
var ErrRunning = errors.New("progressive renderer already running")

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	NumWorkers int      // Number of parallel workers (0 = use CPU count)
	MaxPasses  int      // Maximum number of passes (0 = until stopped)
	TileSize   int      // Tile size used by Step
	Exposure   float64  // Display exposure
	ToneMode   ToneMode // Display tone mapping
	Seed       int64    // Seed for all random generators
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		NumWorkers: 0, // Auto-detect CPU count
		MaxPasses:  0,
		TileSize:   DefaultTileSize,
		Exposure:   1.0,
		ToneMode:   ToneLinear,
		Seed:       42,
	}
}

// PassEvent reports a pass merged into the shared buffer
type PassEvent struct {
	Pass     int           // Total passes accumulated after the merge
	Worker   int           // Worker that rendered the pass, -1 for Step
	Duration time.Duration // Time spent rendering the pass
}

// ProgressiveRaytracer accumulates passes rendered concurrently by a set of workers.
//
// Each worker renders whole passes into its own scratch buffer and merges them into
// the shared buffer under a lock that also regenerates the display image.
type ProgressiveRaytracer struct {
	raytracer *Raytracer
	config    ProgressiveConfig
	logger    core.Logger

	mu       sync.Mutex // Guards accum, display, exposure, tone and seeds
	accum    *Image
	display  *image.RGBA
	exposure float64
	tone     ToneMode
	seeds    *rand.Rand

	stepMu    sync.Mutex // Serializes Step calls
	lifecycle sync.Mutex // Serializes Start and Stop

	running  atomic.Bool
	active   atomic.Int32 // Workers that have not exited yet
	reserved atomic.Int64 // Passes claimed by workers and Step
	wg       sync.WaitGroup
	cancel   context.CancelFunc
	updates  chan PassEvent
}

// NewProgressiveRaytracer creates a progressive raytracer for the scene
func NewProgressiveRaytracer(s *scene.Scene, width, height int, config ProgressiveConfig, logger core.Logger) *ProgressiveRaytracer {
	if config.NumWorkers <= 0 {
		config.NumWorkers = runtime.NumCPU()
	}
	if config.TileSize <= 0 {
		config.TileSize = DefaultTileSize
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}

	accum := NewImage(width, height)
	return &ProgressiveRaytracer{
		raytracer: NewRaytracer(s, width, height, nil),
		config:    config,
		logger:    logger,
		accum:     accum,
		display:   accum.ToRGBA(config.Exposure, config.ToneMode),
		exposure:  config.Exposure,
		tone:      config.ToneMode,
		seeds:     rand.New(rand.NewSource(config.Seed)),
		updates:   make(chan PassEvent, 16),
	}
}

// Start launches the workers. They keep rendering until Stop is called, ctx is
// cancelled or MaxPasses passes have been claimed.
func (pr *ProgressiveRaytracer) Start(ctx context.Context) error {
	pr.lifecycle.Lock()
	defer pr.lifecycle.Unlock()

	if pr.Running() {
		return ErrRunning
	}
	pr.wg.Wait()

	ctx, cancel := context.WithCancel(ctx)
	pr.cancel = cancel
	pr.running.Store(true)

	pr.logger.Printf("Starting progressive rendering with %d workers...\n", pr.config.NumWorkers)
	for i := 0; i < pr.config.NumWorkers; i++ {
		pr.active.Add(1)
		pr.wg.Add(1)
		go pr.worker(ctx, i, pr.nextSeed())
	}
	return nil
}

// Stop clears the running flag and waits for every worker to finish its current pass
func (pr *ProgressiveRaytracer) Stop() {
	pr.lifecycle.Lock()
	defer pr.lifecycle.Unlock()

	pr.running.Store(false)
	if pr.cancel != nil {
		pr.cancel()
		pr.cancel = nil
	}
	pr.wg.Wait()
}

// Wait blocks until all workers have exited
func (pr *ProgressiveRaytracer) Wait() {
	pr.wg.Wait()
}

// Running reports whether any worker is still rendering
func (pr *ProgressiveRaytracer) Running() bool {
	return pr.running.Load() && pr.active.Load() > 0
}

// Step renders a single pass on the calling goroutine, split into tiles
func (pr *ProgressiveRaytracer) Step() error {
	if !pr.reservePass() {
		return ErrPassLimit
	}

	pr.stepMu.Lock()
	defer pr.stepMu.Unlock()

	start := time.Now()
	scratch := NewImage(pr.accum.Width, pr.accum.Height)
	random := rand.New(rand.NewSource(pr.nextSeed()))
	if _, err := pr.raytracer.TraceImageTiled(scratch, random, pr.config.TileSize, pr.config.NumWorkers); err != nil {
		pr.releasePass()
		return err
	}
	return pr.merge(scratch, -1, time.Since(start))
}

// worker renders passes into its own scratch buffer until told to stop
func (pr *ProgressiveRaytracer) worker(ctx context.Context, id int, seed int64) {
	defer pr.wg.Done()
	defer pr.active.Add(-1)

	scratch := NewImage(pr.accum.Width, pr.accum.Height)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(seed)))

	for pr.running.Load() && ctx.Err() == nil {
		if !pr.reservePass() {
			return
		}

		start := time.Now()
		scratch.Reset()
		if _, err := pr.raytracer.TraceImage(scratch, sampler); err != nil {
			pr.releasePass()
			pr.logger.Printf("Worker %d: %v\n", id, err)
			return
		}
		if err := pr.merge(scratch, id, time.Since(start)); err != nil {
			pr.logger.Printf("Worker %d: %v\n", id, err)
			return
		}
	}
}

// reservePass claims one pass against MaxPasses
func (pr *ProgressiveRaytracer) reservePass() bool {
	if pr.config.MaxPasses <= 0 {
		return true
	}
	if pr.reserved.Add(1) > int64(pr.config.MaxPasses) {
		pr.reserved.Add(-1)
		return false
	}
	return true
}

// releasePass returns a claimed pass that was never merged
func (pr *ProgressiveRaytracer) releasePass() {
	if pr.config.MaxPasses > 0 {
		pr.reserved.Add(-1)
	}
}

func (pr *ProgressiveRaytracer) nextSeed() int64 {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.seeds.Int63()
}

// merge folds a finished scratch pass into the shared buffer and refreshes the display
func (pr *ProgressiveRaytracer) merge(scratch *Image, worker int, duration time.Duration) error {
	pr.mu.Lock()
	if err := pr.accum.Merge(scratch); err != nil {
		pr.mu.Unlock()
		return fmt.Errorf("merging pass: %w", err)
	}
	_ = pr.accum.Write(pr.display, pr.exposure, pr.tone)
	passes := pr.accum.Passes
	pr.mu.Unlock()

	event := PassEvent{Pass: passes, Worker: worker, Duration: duration}
	select {
	case pr.updates <- event:
	default:
		// Nobody is listening fast enough; the display buffer already holds the result
	}
	return nil
}

// ChangeExposure re-tonemaps the display with a new exposure without re-rendering
func (pr *ProgressiveRaytracer) ChangeExposure(exposure float64) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.exposure = exposure
	_ = pr.accum.Write(pr.display, pr.exposure, pr.tone)
}

// SetToneMode re-tonemaps the display with a new tone mode without re-rendering
func (pr *ProgressiveRaytracer) SetToneMode(mode ToneMode) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.tone = mode
	_ = pr.accum.Write(pr.display, pr.exposure, pr.tone)
}

// Exposure returns the current display exposure
func (pr *ProgressiveRaytracer) Exposure() float64 {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.exposure
}

// ToneMode returns the current display tone mode
func (pr *ProgressiveRaytracer) ToneMode() ToneMode {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.tone
}

// Display returns a copy of the display-ready RGBA bytes
func (pr *ProgressiveRaytracer) Display() []byte {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return append([]byte(nil), pr.display.Pix...)
}

// DisplayImage returns a copy of the display image
func (pr *ProgressiveRaytracer) DisplayImage() *image.RGBA {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	img := image.NewRGBA(pr.display.Rect)
	copy(img.Pix, pr.display.Pix)
	return img
}

// Mean returns the mean radiance of pixel (x, y) over all accumulated passes
func (pr *ProgressiveRaytracer) Mean(x, y int) core.Vec3 {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.accum.Mean(x, y)
}

// Passes returns the number of accumulated passes
func (pr *ProgressiveRaytracer) Passes() int {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.accum.Passes
}

// Stats summarizes the accumulated buffer
func (pr *ProgressiveRaytracer) Stats() RenderStats {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.accum.Stats()
}

// Updates delivers an event for every merged pass. Events are dropped when the
// channel is full.
func (pr *ProgressiveRaytracer) Updates() <-chan PassEvent {
	return pr.updates
}

// Size returns the image dimensions
func (pr *ProgressiveRaytracer) Size() (int, int) {
	return pr.raytracer.Width(), pr.raytracer.Height()
}
