package parallel

import (
	"runtime"
	"sync"
)

// Workers resolves a requested job count: values <= 0 mean one worker per
// CPU core, and the result never exceeds items (but is at least 1).
func Workers(jobs, items int) int {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	if jobs > items {
		jobs = items
	}
	if jobs < 1 {
		jobs = 1
	}
	return jobs
}

// Parallelize divides the specified total number (items) according to the number of CPU cores,
// and executes the specified function (fn) in parallel for each range (start, end)
func Parallelize(items int, fn func(start, end int)) {
	ParallelizeN(items, runtime.NumCPU(), fn)
}

// ParallelizeN is Parallelize with an explicit worker count.
// A single worker runs fn(0, items) on the calling goroutine.
func ParallelizeN(items, workers int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := Workers(workers, items)
	if numWorkers == 1 {
		fn(0, items)
		return
	}

	// Calculate the number of items each worker handles (ceiling division)
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}

		// Skip if there's no range to handle
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	// Wait for all workers to finish processing
	wg.Wait()
}

// ForEach calls fn(i) for every i in [0, items) using up to workers
// goroutines. Unlike ParallelizeN, indices are handed out one at a time, so
// uneven per-item cost does not leave workers idle. fn must be safe to call
// concurrently; callers typically write into a pre-sized slice at index i.
func ForEach(items, workers int, fn func(i int)) {
	if items == 0 {
		return
	}

	numWorkers := Workers(workers, items)
	if numWorkers == 1 {
		for i := 0; i < items; i++ {
			fn(i)
		}
		return
	}

	next := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				fn(i)
			}
		}()
	}
	for i := 0; i < items; i++ {
		next <- i
	}
	close(next)
	wg.Wait()
}

// ParallelizeWithThreshold performs parallelization only when the number of items exceeds the threshold
// If below threshold, normal sequential processing is performed
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		// Sequential processing when below threshold
		fn(0, items)
		return
	}

	// Parallel processing when above threshold
	Parallelize(items, fn)
}
