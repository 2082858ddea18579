package cmd

import (
	"runtime"
	"sync"
)

// determineWorkerCount returns the number of detail reports built in
// parallel: one per id, at most NumCPU/2 clamped to [2, 4].
func determineWorkerCount(numIDs int) int {
	if numIDs <= 1 {
		return 1
	}

	maxWorkers := runtime.NumCPU() / 2
	if maxWorkers < 2 {
		maxWorkers = 2
	}
	if maxWorkers > 4 {
		maxWorkers = 4 // each report holds a few connections of the pool
	}

	if numIDs < maxWorkers {
		return numIDs
	}
	return maxWorkers
}

// forEachID calls fn with every id and its position on a bounded worker
// pool. errs[i] is the error of ids[i].
func forEachID(ids []int64, fn func(i int, id int64) error) []error {
	errs := make([]error, len(ids))
	numWorkers := determineWorkerCount(len(ids))

	if numWorkers == 1 {
		for i, id := range ids {
			errs[i] = fn(i, id)
		}
		return errs
	}

	jobs := make(chan int, len(ids))
	for i := range ids {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				errs[i] = fn(i, ids[i])
			}
		}()
	}
	wg.Wait()
	return errs
}
