package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"talkscout/internal/logging"
	"talkscout/internal/services"
)

// RunBatch captures requests with at most workers running at once. Results
// are returned in request order; a failed capture does not stop the others.
// The returned error joins every failure.
func (p *Pipeline) RunBatch(ctx context.Context, reqs []Request, workers int) ([]Result, error) {
	results := make([]Result, len(reqs))
	if len(reqs) == 0 {
		return results, nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(reqs) {
		workers = len(reqs)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if p.startInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(p.startInterval), 1)
	}

	ctx = services.WithRequestID(ctx, p.newRunID())
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("batch capture started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("requests", len(reqs)),
		logging.Int("workers", workers),
		logging.Duration("start_interval", p.startInterval),
	)

	errs := make([]error, len(reqs))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := limiter.Wait(ctx); err != nil {
					results[idx] = Result{URL: reqs[idx].URL, OutputDir: reqs[idx].OutputDir, Err: err}
					errs[idx] = fmt.Errorf("%s: %w", reqs[idx].URL, err)
					continue
				}
				res, err := p.Run(ctx, reqs[idx])
				if err != nil {
					res.Err = err
					errs[idx] = fmt.Errorf("%s: %w", reqs[idx].URL, err)
				}
				results[idx] = res
			}
		}()
	}

	for idx := range reqs {
		if ctx.Err() != nil {
			results[idx] = Result{URL: reqs[idx].URL, OutputDir: reqs[idx].OutputDir, Err: ctx.Err()}
			errs[idx] = fmt.Errorf("%s: %w", reqs[idx].URL, ctx.Err())
			continue
		}
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	logger.Info("batch capture finished",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("succeeded", len(reqs)-failed),
		logging.Int("failed", failed),
	)
	return results, errors.Join(errs...)
}
