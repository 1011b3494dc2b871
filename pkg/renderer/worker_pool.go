package renderer

import (
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
)

// PixelTask represents one pixel to be rendered
type PixelTask struct {
	X, Y int
}

// PixelResult contains the finished color of one pixel
type PixelResult struct {
	X, Y int
	RGB  [3]uint8
}

// WorkerPool manages parallel pixel rendering.
// Workers pull PixelTasks and push PixelResults to a single collector.
type WorkerPool struct {
	taskQueue   chan PixelTask
	resultQueue chan PixelResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
}

// Worker handles individual pixel rendering tasks
type Worker struct {
	ID          int
	raytracer   *Raytracer
	sampler     *core.RandomSampler // Owned by this worker only
	seed        int64               // 0 = unseeded
	taskQueue   chan PixelTask
	resultQueue chan PixelResult
	stopChan    chan struct{}
	completed   *atomic.Int64
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// numWorkers <= 0 uses one worker per CPU. A non-zero seed makes every pixel's
// random stream depend only on (seed, pixel), so output is independent of scheduling.
// completed is incremented once per finished pixel.
func NewWorkerPool(raytracer *Raytracer, numWorkers int, seed int64, completed *atomic.Int64) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan PixelTask, numWorkers*64),
		resultQueue: make(chan PixelResult, numWorkers*64),
		numWorkers:  numWorkers,
		stopChan:    make(chan struct{}),
	}

	baseSeed := time.Now().UnixNano()
	for i := 0; i < numWorkers; i++ {
		worker := &Worker{
			ID:          i,
			raytracer:   raytracer,
			sampler:     core.NewRandomSampler(rand.New(rand.NewSource(baseSeed + int64(i)))),
			seed:        seed,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
			stopChan:    wp.stopChan,
			completed:   completed,
		}
		wp.workers = append(wp.workers, worker)
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop closes the task queue, waits for workers to finish and closes the result queue.
// Must be called exactly once, by the goroutine submitting tasks.
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// Cancel makes workers and SubmitTask give up without finishing queued work
func (wp *WorkerPool) Cancel() {
	wp.stopOnce.Do(func() { close(wp.stopChan) })
}

// SubmitTask submits a pixel task to the worker pool.
// It returns false if the pool was cancelled.
func (wp *WorkerPool) SubmitTask(task PixelTask) bool {
	select {
	case wp.taskQueue <- task:
		return true
	case <-wp.stopChan:
		return false
	}
}

// Results returns the channel of completed pixels; it is closed by Stop
func (wp *WorkerPool) Results() <-chan PixelResult {
	return wp.resultQueue
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		select {
		case <-w.stopChan:
			return
		default:
		}

		if w.seed != 0 {
			w.sampler.Reseed(PixelSeed(w.seed, task.Y*w.raytracer.Width()+task.X))
		}

		result := PixelResult{
			X:   task.X,
			Y:   task.Y,
			RGB: w.raytracer.RenderPixel(task.X, task.Y, w.sampler),
		}
		w.completed.Add(1)

		select {
		case w.resultQueue <- result:
		case <-w.stopChan:
			return
		}
	}
}

// PixelSeed derives the random seed of one pixel from the frame seed (splitmix64 finalizer)
func PixelSeed(seed int64, pixelIndex int) int64 {
	z := uint64(seed) + uint64(pixelIndex+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return int64(z ^ (z >> 31))
}
