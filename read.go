package chapterforge

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/chapterforge/chapterforge/internal/binary"
	"github.com/chapterforge/chapterforge/internal/m4a"
)

// ReadM4A walks a produced or foreign M4A/MP4 file and reconstructs
// its chapter titles, URL track, image track, and top-level metadata.
//
// Adapted from Open (file.go): a bounds-checked
// *binary.SafeReader is built over the opened file and handed to the
// structured parser, with a typed error returned on any read failure.
func ReadM4A(path string, opts ...ReadOption) (*ReadResult, error) {
	options := defaultReadOptions()
	for _, opt := range opts {
		opt(options)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	sr := binary.NewSafeReader(f, stat.Size(), path)
	result, err := m4a.Read(sr, stat.Size())
	if err != nil {
		return nil, err
	}

	return fromInternalReadResult(result), nil
}

// ReadMany reads every path in paths concurrently, bounded to
// runtime.NumCPU() in flight at once. It returns as soon as every read
// either succeeds or one fails; on the first failure, ctx is canceled
// so remaining reads stop early.
//
// Adapted from OpenMany (file.go), which uses
// golang.org/x/sync/errgroup for the same bounded fan-out.
func ReadMany(ctx context.Context, paths ...string) ([]*ReadResult, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]*ReadResult, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			result, err := ReadM4A(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
