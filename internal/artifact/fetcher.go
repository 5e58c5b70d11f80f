package artifact

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// Downloader streams the body of a URL into w.
// api.Client implements this interface.
type Downloader interface {
	Download(ctx context.Context, rawURL string, w io.Writer) (int64, error)
}

// Saved describes one artifact written to disk.
type Saved struct {
	Kind Kind
	Path string
	Size int64
}

// Fetcher downloads analysis artifacts to a local directory.
type Fetcher struct {
	resolver    *Resolver
	downloader  Downloader
	concurrency int
}

// NewFetcher creates a Fetcher. At most three downloads run at once,
// one per artifact kind.
func NewFetcher(resolver *Resolver, downloader Downloader) *Fetcher {
	return &Fetcher{
		resolver:    resolver,
		downloader:  downloader,
		concurrency: len(Kinds),
	}
}

// Save downloads the given artifacts of analysis id into dir/id.
// Any failure cancels the remaining downloads; files already written
// by the failed batch are removed.
func (f *Fetcher) Save(ctx context.Context, id, dir string, kinds ...Kind) ([]Saved, error) {
	if len(kinds) == 0 {
		kinds = []Kind{Original}
	}

	target := filepath.Join(dir, filepath.Base(id))
	if err := os.MkdirAll(target, 0750); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	saved := make([]Saved, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i, kind := range kinds {
		g.Go(func() error {
			dest := filepath.Join(target, kind.FileName())
			n, err := f.saveOne(gctx, f.resolver.Artifact(id, kind), dest)
			if err != nil {
				return fmt.Errorf("failed to download %s: %w", kind, err)
			}
			saved[i] = Saved{Kind: kind, Path: dest, Size: n}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, kind := range kinds {
			_ = os.Remove(filepath.Join(target, kind.FileName())) //nolint:errcheck // best effort cleanup
		}
		return nil, err
	}
	return saved, nil
}

func (f *Fetcher) saveOne(ctx context.Context, rawURL, dest string) (int64, error) {
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return 0, err
	}
	n, err := f.downloader.Download(ctx, rawURL, out)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	return n, err
}
