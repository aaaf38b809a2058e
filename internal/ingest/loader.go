// Package ingest bulk-loads newline-delimited JSON documents into a
// search service, persisting its position between runs so an
// interrupted load resumes where it stopped instead of re-indexing
// from the top. A lock file serializes concurrent invocations on the
// same data file.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/bd808/moar-elasticsearch/elastic"
)

const (
	// lockRetryInterval is how often lock acquisition retries while the
	// context allows.
	lockRetryInterval = 100 * time.Millisecond

	defaultBatchSize = 500
)

// BulkSender submits pre-formatted bulk operation lines. Satisfied by
// *elastic.Client.
type BulkSender interface {
	Bulk(lines []string) *elastic.Results
}

// Progress reports how far a run got.
type Progress struct {
	Docs    int   // documents acknowledged this run
	Batches int   // batches acknowledged this run
	Offset  int64 // byte offset of the first unconsumed line
}

// Loader reads an NDJSON document file and indexes it in batches
// through a BulkSender. After every acknowledged batch the byte offset
// is written to <file>.offset; with resume enabled a later run picks up
// from there.
type Loader struct {
	sender    BulkSender
	fs        FileSystem
	locks     FileLockFactory
	logger    *slog.Logger
	index     string
	doctype   string
	batchSize int
	resume    bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithFileSystem replaces the file system, e.g. with a mock.
func WithFileSystem(fs FileSystem) Option {
	return func(l *Loader) { l.fs = fs }
}

// WithFileLockFactory replaces the lock factory, e.g. with a mock.
func WithFileLockFactory(f FileLockFactory) Option {
	return func(l *Loader) { l.locks = f }
}

// WithBatchSize sets how many documents each bulk request carries.
func WithBatchSize(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.batchSize = n
		}
	}
}

// WithResume makes Run start from the offset recorded by a previous
// run instead of the top of the file.
func WithResume(resume bool) Option {
	return func(l *Loader) { l.resume = resume }
}

// WithLogger sets the logger; defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a loader indexing into the given index and type.
func NewLoader(sender BulkSender, index, doctype string, opts ...Option) *Loader {
	l := &Loader{
		sender:    sender,
		fs:        &OSFileSystem{},
		locks:     &FlockFactory{},
		logger:    slog.Default(),
		index:     index,
		doctype:   doctype,
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run loads the file at path. It returns the progress made even when an
// error cuts the run short; the persisted offset always points at the
// first batch that was not acknowledged.
func (l *Loader) Run(ctx context.Context, path string) (Progress, error) {
	lock := l.locks.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return Progress{}, fmt.Errorf("failed to acquire ingest lock: %w", err)
	}
	if !locked {
		return Progress{}, fmt.Errorf("ingest already running for %s", path)
	}
	defer func() { _ = lock.Unlock() }()

	offset, err := l.startOffset(path)
	if err != nil {
		return Progress{}, err
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		return Progress{}, fmt.Errorf("failed to read document file: %w", err)
	}
	if offset > int64(len(data)) {
		return Progress{}, fmt.Errorf("recorded offset %d is past the end of %s; state file is stale", offset, path)
	}

	progress := Progress{Offset: offset}
	var lines []string
	pos := offset

	flush := func() error {
		if len(lines) == 0 {
			return nil
		}
		res := l.sender.Bulk(lines)
		if res.IsError() {
			return fmt.Errorf("bulk request failed at offset %d", progress.Offset)
		}
		progress.Docs += len(lines) / 2
		progress.Batches++
		progress.Offset = pos
		lines = lines[:0]
		if err := l.writeOffset(path, pos); err != nil {
			return err
		}
		l.logger.Debug("bulk batch acknowledged",
			"file", path,
			"batch", progress.Batches,
			"offset", pos)
		return nil
	}

	for pos < int64(len(data)) {
		if err := ctx.Err(); err != nil {
			return progress, fmt.Errorf("ingest interrupted: %w", err)
		}
		lineEnd := int64(len(data))
		next := lineEnd
		if i := bytes.IndexByte(data[pos:], '\n'); i >= 0 {
			lineEnd = pos + int64(i)
			next = lineEnd + 1
		}
		line := bytes.TrimSpace(data[pos:lineEnd])
		pos = next
		if len(line) == 0 {
			continue
		}
		op, err := elastic.IndexOp(l.index, l.doctype, "", json.RawMessage(line))
		if err != nil {
			return progress, fmt.Errorf("invalid document at offset %d: %w", progress.Offset, err)
		}
		lines = append(lines, op...)
		if len(lines)/2 >= l.batchSize {
			if err := flush(); err != nil {
				return progress, err
			}
		}
	}
	if err := flush(); err != nil {
		return progress, err
	}
	return progress, nil
}

// startOffset returns where this run begins: the recorded offset when
// resuming, otherwise zero.
func (l *Loader) startOffset(path string) (int64, error) {
	if !l.resume {
		return 0, nil
	}
	data, err := l.fs.ReadFile(offsetPath(path))
	if err != nil {
		// No state yet is a normal first run.
		return 0, nil
	}
	offset, err := strconv.ParseInt(string(bytes.TrimSpace(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt offset file for %s: %w", path, err)
	}
	if offset < 0 {
		return 0, fmt.Errorf("corrupt offset file for %s: negative offset %d", path, offset)
	}
	return offset, nil
}

func (l *Loader) writeOffset(path string, offset int64) error {
	if err := l.fs.WriteFile(offsetPath(path), []byte(strconv.FormatInt(offset, 10)), 0644); err != nil {
		return fmt.Errorf("failed to record ingest offset: %w", err)
	}
	return nil
}

func offsetPath(path string) string {
	return path + ".offset"
}
