// Package source retrieves repository snapshots and extracts single
// components from them.
package source

import (
	"context"

	"github.com/adk-dev/adk/internal/component"
)

// Fetcher downloads a full snapshot of a repository as a zip archive.
type Fetcher interface {
	// Fetch returns the archive bytes for repo ("owner/name") at branch.
	Fetch(ctx context.Context, repo, branch string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface
type FetcherFunc func(ctx context.Context, repo, branch string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, repo, branch string) ([]byte, error) {
	return f(ctx, repo, branch)
}

// Load fetches repo at branch and opens the archive.
func Load(ctx context.Context, f Fetcher, repo, branch string) (*Snapshot, error) {
	data, err := f.Fetch(ctx, repo, branch)
	if err != nil {
		return nil, err
	}
	return OpenSnapshot(data)
}

// Catalog lists every component the snapshot of repo at branch offers.
func Catalog(ctx context.Context, f Fetcher, repo, branch string) ([]component.Ref, error) {
	snap, err := Load(ctx, f, repo, branch)
	if err != nil {
		return nil, err
	}
	return snap.Catalog(), nil
}
