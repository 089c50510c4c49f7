package siteresponse

import "golang.org/x/sync/errgroup"

// forEachFrequency calls fn for every index in [0, n). With more than one
// worker the calls run concurrently, at most workers at a time; fn must only
// write to its own index.
func forEachFrequency(n, workers int, fn func(i int)) {
	if workers <= 1 || n < 2 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i // per-iteration copy; go.mod targets go 1.21
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}
