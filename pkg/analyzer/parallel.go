// Package analyzer holds helpers shared by the analysis stages and their callers.
package analyzer

import (
	"context"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// Result is the outcome of processing one input.
type Result[T any] struct {
	Input string
	Value T
	Err   error
}

// DoneFunc is called after each input is processed, with its error if any.
type DoneFunc func(input string, err error)

// MapInputs processes inputs in parallel and returns one Result per input,
// in input order. If maxWorkers is <= 0, defaults to 2x NumCPU.
// Inputs not yet started when ctx is cancelled fail with ctx.Err().
func MapInputs[T any](ctx context.Context, inputs []string, maxWorkers int, fn func(string) (T, error), onDone DoneFunc) []Result[T] {
	if len(inputs) == 0 {
		return nil
	}
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * 2
	}

	results := make([]Result[T], len(inputs))
	p := pool.New().WithMaxGoroutines(maxWorkers)
	for i, input := range inputs {
		p.Go(func() {
			r := Result[T]{Input: input}
			if err := ctx.Err(); err != nil {
				r.Err = err
			} else {
				r.Value, r.Err = fn(input)
			}
			results[i] = r
			if onDone != nil {
				onDone(input, r.Err)
			}
		})
	}
	p.Wait()

	return results
}
