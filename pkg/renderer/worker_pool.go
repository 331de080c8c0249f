package renderer

import (
	"runtime"
	"sync"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// TileTask asks a worker to render one tile of a pass
type TileTask struct {
	Tile   *Tile
	Image  *Image    // Shared pass buffer; tiles never overlap
	Pass   PassState // Shared by every tile of the pass
	TaskID int
}

// TileResult reports a finished tile
type TileResult struct {
	TaskID int
	Stats  RenderStats
}

// WorkerPool renders the tiles of a single pass in parallel.
// Submit every task, collect one result per task, then Stop.
type WorkerPool struct {
	tileRenderer *TileRenderer
	tasks        chan TileTask
	results      chan TileResult
	numWorkers   int
	wg           sync.WaitGroup
}

// NewWorkerPool creates a pool whose queues hold numTiles tasks without blocking
func NewWorkerPool(tileRenderer *TileRenderer, numTiles, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{
		tileRenderer: tileRenderer,
		tasks:        make(chan TileTask, numTiles),
		results:      make(chan TileResult, numTiles),
		numWorkers:   numWorkers,
	}
}

// Start launches the workers
func (wp *WorkerPool) Start() {
	wp.wg.Add(wp.numWorkers)
	for i := 0; i < wp.numWorkers; i++ {
		go wp.work()
	}
}

// Stop closes the task queue, waits for the workers and closes the result queue
func (wp *WorkerPool) Stop() {
	close(wp.tasks)
	wp.wg.Wait()
	close(wp.results)
}

// SubmitTask queues a tile
func (wp *WorkerPool) SubmitTask(task TileTask) {
	wp.tasks <- task
}

// GetResult returns the next finished tile; ok is false once the pool is stopped and drained
func (wp *WorkerPool) GetResult() (result TileResult, ok bool) {
	result, ok = <-wp.results
	return result, ok
}

func (wp *WorkerPool) work() {
	defer wp.wg.Done()

	for task := range wp.tasks {
		// Each tile draws from its own generator, so the result does not depend on scheduling
		sampler := core.NewRandomSampler(task.Tile.Random)
		wp.results <- TileResult{
			TaskID: task.TaskID,
			Stats:  wp.tileRenderer.RenderTileBounds(task.Tile.Bounds, task.Image, task.Pass, sampler),
		}
	}
}
