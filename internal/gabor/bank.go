package gabor

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Bank is a set of oriented kernels together with the responses of one source
// image to each of them. Kernels[i] produced Responses[i].
type Bank struct {
	Params    Params
	Border    Border
	Kernels   []Kernel
	Responses []*mat.Dense
}

// Dims returns the dimensions shared by the source image and every response.
func (b *Bank) Dims() (rows, cols int) {
	if len(b.Responses) == 0 {
		return 0, 0
	}
	return b.Responses[0].Dims()
}

type buildOptions struct {
	border  Border
	workers int
}

// Option configures Build.
type Option func(*buildOptions)

// WithBorder sets the border extension policy. The default is BorderReflect101.
func WithBorder(b Border) Option {
	return func(o *buildOptions) { o.border = b }
}

// WithWorkers bounds the number of kernels filtered concurrently. Values below
// one are treated as one.
func WithWorkers(n int) Option {
	return func(o *buildOptions) { o.workers = n }
}

// Build generates the kernels described by p and filters src with each one.
//
// Parameters:
//   - ctx: Cancels filtering between kernels.
//   - p: Bank parameters. Validated before any work is done.
//   - src: Grayscale source image. Not modified.
//   - opts: WithBorder (default BorderReflect101) and WithWorkers (default 1).
//
// Returns:
//   - *Bank: Kernels[i] and Responses[i] for every orientation i in order.
//     Every response has the dimensions of src.
//   - error: Non-nil if any of the conditions below holds.
//
// # Concurrency
//
// Up to the configured number of kernels are filtered at once. Each goroutine
// writes only its own response slot, so the result does not depend on the
// worker count or scheduling.
//
// # Errors
//
//   - ErrInvalidParams if p fails validation
//   - ErrEmptySource if src is nil or has zero rows or columns
//   - ctx.Err() if the context is cancelled before every kernel has run
func Build(ctx context.Context, p Params, src *mat.Dense, opts ...Option) (*Bank, error) {
	o := buildOptions{border: BorderReflect101, workers: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = 1
	}

	kernels, err := Kernels(p)
	if err != nil {
		return nil, err
	}
	if src == nil || src.IsEmpty() {
		return nil, ErrEmptySource
	}

	responses := make([]*mat.Dense, len(kernels))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i := range kernels {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			responses[i] = Filter(src, kernels[i], o.border)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Bank{
		Params:    p,
		Border:    o.border,
		Kernels:   kernels,
		Responses: responses,
	}, nil
}
