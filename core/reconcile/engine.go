package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const maxRetryDelay = 10 * time.Second

// Apply executes actions against the mutator and aggregates the outcomes.
//
// A failing action never stops the batch: its error is captured in the outcome
// and counted as Failed. With Concurrency > 1 the actions are spread over a fixed
// pool of workers, each accumulating a private Result that is merged once all
// workers are done.
func Apply[R any, T any](ctx context.Context, actions []Action[R, T], m Mutator[R, T], opts ApplyOptions) Result {
	if opts.DryRun {
		var res Result
		for _, a := range actions {
			o := Outcome{Type: a.Type, Key: a.Key}
			res.record(o)
			notify(opts, o)
		}
		return res
	}

	workers := opts.Concurrency
	if workers > len(actions) {
		workers = len(actions)
	}

	if workers < 2 {
		var res Result
		for _, a := range actions {
			o := execute(ctx, a, m, opts)
			res.record(o)
			notify(opts, o)
		}
		return res
	}

	actionsCh := make(chan Action[R, T], len(actions))
	for _, a := range actions {
		actionsCh <- a
	}
	close(actionsCh)

	partials := make([]Result, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(local *Result) {
			defer wg.Done()
			for a := range actionsCh {
				o := execute(ctx, a, m, opts)
				local.record(o)
				notify(opts, o)
			}
		}(&partials[i])
	}
	wg.Wait()

	var res Result
	for _, p := range partials {
		res.Merge(p)
	}
	return res
}

func notify(opts ApplyOptions, o Outcome) {
	if opts.OnOutcome != nil {
		opts.OnOutcome(o)
	}
}

// execute runs one action with the retry policy. Creates are only retried when
// the mutator is a Deduper and the key is confirmed absent; if the key turns up
// the earlier attempt landed and the create counts as a success.
func execute[R any, T any](ctx context.Context, a Action[R, T], m Mutator[R, T], opts ApplyOptions) Outcome {
	o := Outcome{Type: a.Type, Key: a.Key}

	for {
		o.Attempts++
		err := call(ctx, a, m, opts.CallTimeout)
		if err == nil {
			o.Err = nil
			return o
		}
		o.Err = err

		if o.Attempts > opts.Retries || ctx.Err() != nil {
			return o
		}
		if opts.ShouldRetry != nil && !opts.ShouldRetry(err) {
			return o
		}

		if a.Type == ActionCreate {
			deduper, ok := any(m).(Deduper)
			if !ok {
				return o
			}
			exists, derr := withTimeout(ctx, opts.CallTimeout, func(ctx context.Context) (bool, error) {
				return deduper.Exists(ctx, a.Key)
			})
			if derr != nil {
				o.Err = fmt.Errorf("%w (existence check failed: %v)", err, derr)
				return o
			}
			if exists {
				o.Err = nil
				return o
			}
		}

		if err := sleepWithContext(ctx, retryDelay(opts, o.Attempts)); err != nil {
			return o
		}
	}
}

func call[R any, T any](ctx context.Context, a Action[R, T], m Mutator[R, T], timeout time.Duration) error {
	_, err := withTimeout(ctx, timeout, func(ctx context.Context) (struct{}, error) {
		switch a.Type {
		case ActionCreate:
			return struct{}{}, m.Create(ctx, a.Record)
		case ActionUpdate:
			return struct{}{}, m.Update(ctx, a.Existing, a.Record)
		case ActionArchive:
			return struct{}{}, m.Archive(ctx, a.Existing)
		default:
			return struct{}{}, fmt.Errorf("unknown action type %q", a.Type)
		}
	})
	return err
}

func withTimeout[V any](ctx context.Context, timeout time.Duration, fn func(context.Context) (V, error)) (V, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

func retryDelay(opts ApplyOptions, attempt int) time.Duration {
	if opts.RetryBackoff <= 0 || attempt < 1 {
		return 0
	}
	delay := opts.RetryBackoff << (attempt - 1)
	if delay > maxRetryDelay || delay <= 0 {
		delay = maxRetryDelay
	}
	return delay
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
