// Package installer runs the add, remove and update commands against a
// target root, checking local preconditions before touching the network.
package installer

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/adk-dev/adk/internal/component"
	"github.com/adk-dev/adk/internal/config"
	adkerr "github.com/adk-dev/adk/internal/errors"
	"github.com/adk-dev/adk/internal/resolve"
	"github.com/adk-dev/adk/internal/source"
)

// Op names the action a Result records
type Op string

const (
	OpAdd    Op = "added"
	OpRemove Op = "removed"
	OpUpdate Op = "updated"
	OpSkip   Op = "skipped"
)

// Result describes what happened to one component.
type Result struct {
	Ref  component.Ref
	Path string
	Op   Op
	Err  error // set only by AddMany
}

// Installer handles installing components from a source repository
type Installer struct {
	fetcher source.Fetcher
	logger  *log.Logger
}

// Option configures an Installer
type Option func(*Installer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(i *Installer) {
		if l != nil {
			i.logger = l
		}
	}
}

// New creates an installer that downloads archives through fetcher.
func New(fetcher source.Fetcher, opts ...Option) *Installer {
	i := &Installer{
		fetcher: fetcher,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// precondition is the local state an operation requires before it runs.
type precondition int

const (
	mustBeAbsent precondition = iota
	mustBePresent
)

// check verifies the precondition for op without any network access.
func check(op string, want precondition, ref component.Ref, cfg config.Config) error {
	path := resolve.LocalPath(ref, cfg)
	state, err := resolve.Inspect(ref, cfg)
	if err != nil {
		// e.g. a file where a parent directory of path belongs
		kind := adkerr.KindNotFound
		if want == mustBeAbsent {
			kind = adkerr.KindAlreadyExists
		}
		return adkerr.Wrap(kind, op, ref.String(), fmt.Errorf("cannot inspect %s: %w", path, err))
	}

	switch {
	case state == resolve.StateMismatch && want == mustBeAbsent:
		return adkerr.Newf(adkerr.KindAlreadyExists, op, ref.String(),
			"wrong kind at install path, not overwriting: %s", resolve.MismatchHint(ref, cfg))
	case state == resolve.StateMismatch:
		return adkerr.Newf(adkerr.KindNotFound, op, ref.String(),
			"%s", resolve.MismatchHint(ref, cfg))
	case state == resolve.StatePresent && want == mustBeAbsent:
		return adkerr.Newf(adkerr.KindAlreadyExists, op, ref.String(),
			"%s already exists, use update to refresh it", path)
	case state == resolve.StateAbsent && want == mustBePresent:
		return adkerr.Newf(adkerr.KindNotFound, op, ref.String(),
			"%s does not exist, use add to install it", path)
	}
	return nil
}

// Add installs ref. It fails with AlreadyExists, before fetching anything,
// if the local path is occupied.
func (i *Installer) Add(ctx context.Context, ref component.Ref, cfg config.Config) (Result, error) {
	return i.install(ctx, "add", ref, cfg, mustBeAbsent)
}

// Update replaces an installed ref with the current remote content.
func (i *Installer) Update(ctx context.Context, ref component.Ref, cfg config.Config) (Result, error) {
	return i.install(ctx, "update", ref, cfg, mustBePresent)
}

func (i *Installer) install(ctx context.Context, op string, ref component.Ref, cfg config.Config, want precondition) (Result, error) {
	if err := check(op, want, ref, cfg); err != nil {
		return Result{}, err
	}

	snap, err := i.load(ctx, cfg)
	if err != nil {
		return Result{}, err
	}
	return i.extract(ctx, snap, ref, cfg, want)
}

func (i *Installer) load(ctx context.Context, cfg config.Config) (*source.Snapshot, error) {
	i.logger.Debug("fetching repository", "repo", cfg.Repo, "branch", cfg.Branch)
	snap, err := source.Load(ctx, i.fetcher, cfg.Repo, cfg.Branch)
	if err != nil {
		return nil, err
	}
	i.logger.Debug("opened archive", "snapshot", snap)
	return snap, nil
}

func (i *Installer) extract(ctx context.Context, snap *source.Snapshot, ref component.Ref, cfg config.Config, want precondition) (Result, error) {
	dest := resolve.LocalPath(ref, cfg)
	i.logger.Debug("extracting", "ref", ref, "source", ref.SourcePath(), "dest", dest)

	if err := snap.Extract(ctx, ref, dest); err != nil {
		if want == mustBeAbsent {
			resolve.PruneEmptyParents(dest, resolve.TypeDir(ref.Type, cfg))
		}
		return Result{}, err
	}

	op := OpAdd
	if want == mustBePresent {
		op = OpUpdate
	}
	i.logger.Info("component "+string(op), "ref", ref, "path", dest)
	return Result{Ref: ref, Path: dest, Op: op}, nil
}

// Remove deletes an installed ref. Nothing is fetched.
func (i *Installer) Remove(ctx context.Context, ref component.Ref, cfg config.Config) (Result, error) {
	if err := check("remove", mustBePresent, ref, cfg); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	path := resolve.LocalPath(ref, cfg)
	if err := resolve.RemoveLocal(ref, cfg); err != nil {
		return Result{}, err
	}
	i.logger.Info("component removed", "ref", ref, "path", path)
	return Result{Ref: ref, Path: path, Op: OpRemove}, nil
}

// AddMany installs every ref that is not yet present using a single
// download. Refs already installed are skipped; per-ref failures are
// recorded in the Result and do not stop the batch. The returned error is
// set only when the archive itself could not be obtained.
func (i *Installer) AddMany(ctx context.Context, refs []component.Ref, cfg config.Config) ([]Result, error) {
	return i.addMany(ctx, refs, cfg, func() (*source.Snapshot, error) {
		return i.load(ctx, cfg)
	})
}

func (i *Installer) addMany(ctx context.Context, refs []component.Ref, cfg config.Config, open func() (*source.Snapshot, error)) ([]Result, error) {
	results := make([]Result, len(refs))
	var pending []int
	for n, ref := range refs {
		results[n] = Result{Ref: ref, Path: resolve.LocalPath(ref, cfg)}
		if err := check("add", mustBeAbsent, ref, cfg); err != nil {
			results[n].Op = OpSkip
			results[n].Err = err
			continue
		}
		pending = append(pending, n)
	}
	if len(pending) == 0 {
		return results, nil
	}

	snap, err := open()
	if err != nil {
		return results, err
	}

	for _, n := range pending {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		// an earlier entry may have installed the same ref
		if err := check("add", mustBeAbsent, refs[n], cfg); err != nil {
			results[n].Op = OpSkip
			results[n].Err = err
			continue
		}
		res, err := i.extract(ctx, snap, refs[n], cfg, mustBeAbsent)
		if err != nil {
			results[n].Err = err
			continue
		}
		results[n] = res
	}
	return results, nil
}

// Batch runs several operations against one downloaded archive.
type Batch struct {
	inst *Installer
	snap *source.Snapshot
	cfg  config.Config
}

// Open downloads cfg's repository once for use by a Batch.
func (i *Installer) Open(ctx context.Context, cfg config.Config) (*Batch, error) {
	snap, err := i.load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Batch{inst: i, snap: snap, cfg: cfg}, nil
}

// Catalog lists every component in the batch's archive.
func (b *Batch) Catalog() []component.Ref {
	return b.snap.Catalog()
}

// AddMany behaves like Installer.AddMany without downloading again.
func (b *Batch) AddMany(ctx context.Context, refs []component.Ref) ([]Result, error) {
	return b.inst.addMany(ctx, refs, b.cfg, func() (*source.Snapshot, error) {
		return b.snap, nil
	})
}

// Catalog lists every component cfg's repository offers.
func (i *Installer) Catalog(ctx context.Context, cfg config.Config) ([]component.Ref, error) {
	snap, err := i.load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return snap.Catalog(), nil
}
