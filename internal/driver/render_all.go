package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"shady/internal/trace"
)

// RenderAll compiles units concurrently, at most jobs at a time (jobs <= 0
// means GOMAXPROCS). Results keep the order of units. The first failure
// cancels the units that have not started yet and is returned.
func RenderAll(ctx context.Context, jobs int, units []Unit, opts Options) ([]*Result, error) {
	if len(units) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	tr := trace.FromContext(ctx)
	sp := trace.Begin(tr, trace.ScopeDriver, "render-all", trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, sp)

	// Each goroutine writes its own slot.
	results := make([]*Result, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(units)))
	for i, u := range units {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := Compile(gctx, u, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		sp.End(err.Error())
		return nil, err
	}
	sp.End("")
	return results, nil
}
