package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adk-dev/adk/internal/component"
	adkerr "github.com/adk-dev/adk/internal/errors"
)

// MaxEntryBytes bounds the uncompressed size of a single extracted file (64 MiB).
const MaxEntryBytes = 64 << 20

const stagingPattern = ".adk-staging-*"

// extractor installs a looked-up component at dest for one storage shape.
type extractor interface {
	extract(ctx context.Context, ref component.Ref, entries []Entry, dest string) error
}

var extractors = map[component.ShapeKind]extractor{
	component.ShapeDir:  dirExtractor{},
	component.ShapeFile: fileExtractor{},
}

// Extract copies ref out of the snapshot to dest. Content is written to a
// staging location next to dest and renamed into place only once complete,
// so dest holds either its previous content or the full new component.
func (s *Snapshot) Extract(ctx context.Context, ref component.Ref, dest string) error {
	entries, err := s.Lookup(ref)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return adkerr.Wrap(adkerr.KindExtraction, "extract", dest,
			fmt.Errorf("failed to create %s: %w", filepath.Dir(dest), err))
	}

	if err := extractors[ref.Type.Shape().Kind()].extract(ctx, ref, entries, dest); err != nil {
		return extractionError(dest, err)
	}
	return nil
}

// extractionError gives local write failures the extraction kind. Context
// errors and errors that already carry a kind pass through.
func extractionError(dest string, err error) error {
	var kinded *adkerr.Error
	if errors.As(err, &kinded) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return adkerr.Wrap(adkerr.KindExtraction, "extract", dest, err)
}

type dirExtractor struct{}

func (dirExtractor) extract(ctx context.Context, ref component.Ref, entries []Entry, dest string) error {
	staging, err := os.MkdirTemp(filepath.Dir(dest), "."+filepath.Base(dest)+stagingPattern)
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	prefix := ref.SourcePath() + "/"
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel := strings.TrimPrefix(e.Path, prefix)
		if e.Path == ref.SourcePath() {
			continue
		}

		target, err := safeJoin(staging, rel)
		if err != nil {
			return adkerr.Wrap(adkerr.KindExtraction, "extract", e.file.Name, err)
		}

		switch {
		case e.IsDir():
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case e.Mode().IsRegular():
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			if err := writeEntry(e, target); err != nil {
				return err
			}
		default:
			return adkerr.Newf(adkerr.KindExtraction, "extract", e.file.Name,
				"unsupported entry type %s", e.Mode().Type())
		}
	}

	if err := os.Chmod(staging, 0755); err != nil {
		return err
	}
	return swapDir(staging, dest)
}

type fileExtractor struct{}

func (fileExtractor) extract(ctx context.Context, ref component.Ref, entries []Entry, dest string) error {
	e := entries[0]
	if !e.Mode().IsRegular() {
		return adkerr.Newf(adkerr.KindExtraction, "extract", e.file.Name,
			"unsupported entry type %s", e.Mode().Type())
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+stagingPattern)
	if err != nil {
		return fmt.Errorf("failed to create staging file: %w", err)
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpName)

	if err := writeEntry(e, tmpName); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("failed to install %s: %w", dest, err)
	}
	return nil
}

// writeEntry copies one regular archive member to target.
func writeEntry(e Entry, target string) error {
	rc, err := e.file.Open()
	if err != nil {
		return adkerr.Wrap(adkerr.KindExtraction, "extract", e.file.Name, err)
	}
	defer rc.Close()

	perm := e.Mode().Perm()
	if perm == 0 {
		perm = 0644
	}
	perm |= 0600

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	n, err := io.Copy(out, io.LimitReader(rc, MaxEntryBytes+1))
	if err != nil {
		out.Close()
		return adkerr.Wrap(adkerr.KindExtraction, "extract", e.file.Name, err)
	}
	if n > MaxEntryBytes {
		out.Close()
		return adkerr.Newf(adkerr.KindExtraction, "extract", e.file.Name,
			"entry exceeds %d bytes", MaxEntryBytes)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	// OpenFile keeps the mode of a file that already exists.
	return os.Chmod(target, perm)
}

// safeJoin validates an archive-relative path and joins it under base.
// Archive content is untrusted: this check is independent of reference
// parsing.
func safeJoin(base, rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("empty entry path")
	}
	if strings.ContainsAny(rel, "\\\x00") {
		return "", fmt.Errorf("entry path %q contains a forbidden character", rel)
	}
	if strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("entry path %q is absolute", rel)
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("entry path %q escapes the destination", rel)
		}
	}

	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("entry path %q is not local", rel)
	}

	target := filepath.Join(base, local)
	back, err := filepath.Rel(base, target)
	if err != nil || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry path %q escapes the destination", rel)
	}
	return target, nil
}

// swapDir moves staged into dest. An existing dest is parked in a backup
// directory first and restored if the final rename fails.
func swapDir(staged, dest string) error {
	if _, err := os.Lstat(dest); os.IsNotExist(err) {
		if err := os.Rename(staged, dest); err != nil {
			return fmt.Errorf("failed to install %s: %w", dest, err)
		}
		return nil
	}

	backupDir, err := os.MkdirTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".adk-old-*")
	if err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	backup := filepath.Join(backupDir, filepath.Base(dest))
	if err := os.Rename(dest, backup); err != nil {
		os.Remove(backupDir)
		return fmt.Errorf("failed to move %s aside: %w", dest, err)
	}
	if err := os.Rename(staged, dest); err != nil {
		if rerr := os.Rename(backup, dest); rerr != nil {
			// keep backupDir: it holds the only copy of the previous content
			return fmt.Errorf("failed to install %s: %v; previous content left at %s: %w", dest, err, backup, rerr)
		}
		os.Remove(backupDir)
		return fmt.Errorf("failed to install %s: %w", dest, err)
	}
	return os.RemoveAll(backupDir)
}

// IsStaging reports whether name looks like a leftover staging or backup entry.
func IsStaging(name string) bool {
	return strings.HasPrefix(name, ".") &&
		(strings.Contains(name, ".adk-staging-") || strings.Contains(name, ".adk-old-"))
}
