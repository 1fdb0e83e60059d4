package features

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/gabor-features/internal/gabor"
	"github.com/ironsheep/gabor-features/internal/imaging"
)

// Options configures an Extractor.
type Options struct {
	// Params describes the filter bank.
	Params gabor.Params

	// Window is the side length of the block read from each response.
	Window int

	// PointsPerRow is the target number of anchors along each axis.
	PointsPerRow int

	// Border is the extension policy used while filtering.
	Border gabor.Border

	// Workers bounds concurrent filtering and assembly. Values below one mean
	// runtime.NumCPU().
	Workers int

	// DumpDir, when set, receives one heatmap PNG per filter response.
	DumpDir string

	// Logger receives progress messages. Nil discards them.
	Logger *log.Logger
}

// DefaultOptions returns the settings of the command line tool without flags.
func DefaultOptions() Options {
	return Options{
		Params:       gabor.DefaultParams(),
		Window:       16,
		PointsPerRow: 24,
		Border:       gabor.BorderReflect101,
		Workers:      runtime.NumCPU(),
	}
}

// Validate checks the bank parameters and the sampling configuration.
func (o Options) Validate() error {
	if err := o.Params.Validate(); err != nil {
		return err
	}
	if o.Window <= 0 {
		return fmt.Errorf("%w: window size must be positive, got %d", ErrInvalidGrid, o.Window)
	}
	if o.PointsPerRow <= 0 {
		return fmt.Errorf("%w: points per row must be positive, got %d", ErrInvalidGrid, o.PointsPerRow)
	}
	return nil
}

// Dimension returns the descriptor length these options produce.
func (o Options) Dimension() int {
	return Dimension(o.Params.Orientations, o.Window)
}

// Extractor runs the full feature extraction pipeline.
type Extractor struct {
	opts   Options
	logger *log.Logger
}

// NewExtractor validates opts and returns an Extractor.
func NewExtractor(opts Options) (*Extractor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Workers < 1 {
		opts.Workers = runtime.NumCPU()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Extractor{opts: opts, logger: logger}, nil
}

// Options returns the effective options.
func (e *Extractor) Options() Options { return e.opts }

// Result holds every intermediate product of one extraction.
type Result struct {
	Bank  *gabor.Bank
	Grid  Grid
	Store *Store
}

// Extract filters src, samples the grid and assembles one descriptor per anchor.
//
// Parameters:
//   - ctx: Cancels filtering and assembly.
//   - src: Grayscale source image, for example from imaging.LoadGray.
//
// Returns:
//   - *Result: The filter bank, the anchor grid and a Store holding one
//     descriptor per anchor in grid order.
//   - error: Non-nil if any stage fails. Nothing is written to disk except the
//     optional response heatmaps.
//
// # Pipeline
//
//  1. Bank: gabor.Build with the configured border and worker count
//  2. Dump: one heatmap per response when DumpDir is set
//  3. Grid: Sample over the response dimensions
//  4. Descriptors: Assemble at every anchor, concurrently
//  5. Store: descriptors added in anchor order
//
// Descriptors are computed concurrently but stored at their anchor's index, so
// the store is always in grid order and the output does not depend on the
// worker count.
//
// # Errors
//
//   - gabor.ErrInvalidParams, gabor.ErrEmptySource from the bank
//   - ErrInvalidGrid from sampling, ErrOutOfBounds from assembly
//   - ErrIO if a heatmap cannot be written
//   - ctx.Err() on cancellation
func (e *Extractor) Extract(ctx context.Context, src *mat.Dense) (*Result, error) {
	start := time.Now()
	bank, err := gabor.Build(ctx, e.opts.Params, src,
		gabor.WithBorder(e.opts.Border),
		gabor.WithWorkers(e.opts.Workers))
	if err != nil {
		return nil, err
	}
	rows, cols := bank.Dims()
	e.logger.Printf("filtered %dx%d image with %d kernels in %v", cols, rows, len(bank.Kernels), time.Since(start))

	if e.opts.DumpDir != "" {
		if err := dumpResponses(e.opts.DumpDir, bank); err != nil {
			return nil, err
		}
		e.logger.Printf("wrote %d response heatmaps to %s", len(bank.Responses), e.opts.DumpDir)
	}

	grid, err := Sample(rows, cols, e.opts.Window, e.opts.PointsPerRow)
	if err != nil {
		return nil, err
	}
	rowGap, colGap := Gaps(rows, cols, e.opts.Window, e.opts.PointsPerRow)
	e.logger.Printf("sampled %d anchors (row gap %d, col gap %d)", len(grid), rowGap, colGap)

	descriptors := make([]Descriptor, len(grid))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, p := range grid {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := Assemble(bank.Responses, p, e.opts.Window)
			if err != nil {
				return err
			}
			descriptors[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	store := NewStore(e.opts.Dimension(), len(descriptors))
	for _, d := range descriptors {
		if err := store.Add(d); err != nil {
			return nil, err
		}
	}

	return &Result{Bank: bank, Grid: grid, Store: store}, nil
}

// Summary describes a completed file-to-file extraction.
type Summary struct {
	Input     string `json:"input"`
	Output    string `json:"output"`
	Rows      int    `json:"rows"`
	Cols      int    `json:"cols"`
	Count     int    `json:"count"`
	Dimension int    `json:"dimension"`
	Bytes     int64  `json:"bytes"`
}

// ExtractFile loads the image at in, extracts its features and writes the
// artifact to out. The descriptors are released once written.
//
// Errors wrap imaging.ErrImageLoad for unreadable input and ErrIO for an
// unwritable output, in addition to the errors of Extract.
func (e *Extractor) ExtractFile(ctx context.Context, in, out string) (*Summary, error) {
	return e.extractFile(ctx, in, out, imaging.LoadGray)
}

// ExtractCached is ExtractFile with the source image taken from cache.
func (e *Extractor) ExtractCached(ctx context.Context, cache *imaging.ImageCache, in, out string) (*Summary, error) {
	return e.extractFile(ctx, in, out, cache.LoadGray)
}

func (e *Extractor) extractFile(ctx context.Context, in, out string, load func(string) (*mat.Dense, error)) (*Summary, error) {
	src, err := load(in)
	if err != nil {
		return nil, err
	}

	res, err := e.Extract(ctx, src)
	if err != nil {
		return nil, err
	}

	rows, cols := src.Dims()
	summary := &Summary{
		Input:     in,
		Output:    out,
		Rows:      rows,
		Cols:      cols,
		Count:     res.Store.Len(),
		Dimension: res.Store.Dimension(),
		Bytes:     res.Store.Size(),
	}

	if err := res.Store.Save(out); err != nil {
		return nil, err
	}
	res.Store.Release()
	e.logger.Printf("wrote %d descriptors of dimension %d to %s", summary.Count, summary.Dimension, out)

	return summary, nil
}

func dumpResponses(dir string, bank *gabor.Bank) error {
	for i, resp := range bank.Responses {
		path := filepath.Join(dir, fmt.Sprintf("response_%02d.png", i))
		if err := imaging.SaveHeatmap(path, resp); err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
	}
	return nil
}
