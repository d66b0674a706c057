package upload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
)

const contentTypeCSV = "text/csv"

// Summary is the only aggregate signal a run produces.
type Summary struct {
	Uploaded int
	Failed   int
}

// FileResult reports one file's outcome, for status listeners.
type FileResult struct {
	Name string
	Err  error // nil on success
}

// Batch uploads every matching file in Dir, deleting local copies whose
// upload was confirmed. Each file is independent: one failure never aborts
// the rest.
type Batch struct {
	Dir     string
	Pattern string // e.g. "*.csv"; defaults to "*.csv"
	Prefix  string // remote key prefix, e.g. "shift_manager_imports"
	Store   Store

	// Notify, when set, receives each file's outcome as it happens.
	Notify func(FileResult)

	// Log defaults to slog.Default.
	Log *slog.Logger

	// remove is swapped out in tests; os.Remove otherwise.
	remove func(string) error
}

func (b *Batch) logger() *slog.Logger {
	if b.Log != nil {
		return b.Log
	}
	return slog.Default()
}

func (b *Batch) pattern() string {
	if b.Pattern != "" {
		return b.Pattern
	}
	return "*.csv"
}

func (b *Batch) removeFile(p string) error {
	if b.remove != nil {
		return b.remove(p)
	}
	return os.Remove(p)
}

// Scan returns the files currently matching in Dir. One-shot: no watching,
// just the state of the folder at call time. A missing folder is an empty
// scan, not an error.
func (b *Batch) Scan() ([]string, error) {
	if _, err := os.Stat(b.Dir); err != nil {
		if os.IsNotExist(err) {
			b.logger().Warn("watch folder does not exist", "dir", b.Dir)
			return nil, nil
		}
		return nil, fmt.Errorf("stat watch folder: %w", err)
	}
	files, err := filepath.Glob(filepath.Join(b.Dir, b.pattern()))
	if err != nil {
		return nil, fmt.Errorf("scan watch folder: %w", err)
	}
	return files, nil
}

// Run scans once and processes every match. The returned error aggregates
// per-file upload failures and never hides the summary: both are valid
// together.
func (b *Batch) Run(ctx context.Context) (Summary, error) {
	log := b.logger()

	files, err := b.Scan()
	if err != nil {
		return Summary{}, err
	}
	log.Info("scan complete", "dir", b.Dir, "files", len(files))

	var sum Summary
	var errs *multierror.Error
	for _, file := range files {
		name := filepath.Base(file)

		if err := b.uploadOne(ctx, file); err != nil {
			sum.Failed++
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", name, err))
			log.Error("upload failed", "file", name, "err", err)
			b.notify(FileResult{Name: name, Err: err})
			continue
		}
		sum.Uploaded++
		log.Info("uploaded", "file", name, "key", b.key(name))
		b.notify(FileResult{Name: name})

		// The upload already succeeded; a failed delete just leaves the
		// local copy behind.
		if err := b.removeFile(file); err != nil {
			log.Warn("uploaded but local copy remains", "file", name, "err", err)
		}
	}

	log.Info("processing complete", "uploaded", sum.Uploaded, "failed", sum.Failed)
	return sum, errs.ErrorOrNil()
}

func (b *Batch) key(name string) string {
	if b.Prefix == "" {
		return name
	}
	return path.Join(b.Prefix, name)
}

func (b *Batch) uploadOne(ctx context.Context, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	return b.Store.Put(ctx, b.key(filepath.Base(file)), f, info.Size(), contentTypeCSV)
}

func (b *Batch) notify(r FileResult) {
	if b.Notify != nil {
		b.Notify(r)
	}
}
