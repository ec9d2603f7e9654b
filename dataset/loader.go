package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ScottSallinen/lp-validate/rule"
	"github.com/ScottSallinen/lp-validate/utils"
)

const (
	DefaultCheckpointLines  = 100_000_000
	DefaultProgressInterval = 30 * time.Second
	scanBatch               = 1 << 16 // Lines between cancellation and progress checks.
)

var (
	ErrInvalidID  = errors.New("invalid vertex id")
	ErrNotRegular = errors.New("not a regular file or directory")
)

// IOError is an input path that could not be opened, traversed or read. The whole load fails with it.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return "failed to read '" + e.Path + "': " + e.Err.Error()
}

func (e *IOError) Unwrap() error { return e.Err }

type Options struct {
	Workers          int           // Files parsed concurrently. 0 or 1 is a single sequential pass.
	SkipHidden       bool          // Ignore files and directories whose name starts with "." or "_" (e.g. _SUCCESS, .crc).
	SizeHint         uint64        // Expected number of entries, to presize the map.
	CheckpointLines  uint64        // Report a checkpoint every this many lines of the load, over all files. Default 100M.
	ProgressInterval time.Duration // Also report a checkpoint at most this often. Default 30s; negative disables.
	MaxLineBytes     int           // Longer lines are skipped. 0 is 64MiB.
	Diagnostics      Diagnostics   // Skipped lines and progress. Nil discards.
}

type loader[T rule.Value] struct {
	rule            rule.Rule[T]
	opts            Options
	diag            Diagnostics
	checkpointLines uint64
	progress        *rate.Sometimes
	lines           atomic.Uint64 // Lines read so far, over all files.
	open            func(path string) (io.ReadCloser, error)
}

// Reads the file, or every file under the directory, at path into a dataset.
// Only an unreadable path fails the load (with an *IOError); malformed lines are skipped.
func Load[T rule.Value](ctx context.Context, path string, r rule.Rule[T], opts Options) (*Dataset[T], error) {
	return newLoader(r, opts).load(ctx, path)
}

func newLoader[T rule.Value](r rule.Rule[T], opts Options) *loader[T] {
	l := &loader[T]{
		rule:            r,
		opts:            opts,
		diag:            opts.Diagnostics,
		checkpointLines: opts.CheckpointLines,
		open:            utils.OpenReader,
	}
	if l.diag == nil {
		l.diag = Discard{}
	}
	if l.checkpointLines == 0 {
		l.checkpointLines = DefaultCheckpointLines
	}
	switch {
	case opts.ProgressInterval == 0:
		l.progress = &rate.Sometimes{Interval: DefaultProgressInterval}
	case opts.ProgressInterval > 0:
		l.progress = &rate.Sometimes{Interval: opts.ProgressInterval}
	}
	return l
}

func (l *loader[T]) load(ctx context.Context, path string) (*Dataset[T], error) {
	opts := l.opts
	files, err := ListFiles(path, opts.SkipHidden)
	if err != nil {
		return nil, err
	}

	d := &Dataset[T]{Path: path, m: newPackedMap[T](opts.SizeHint)}
	if opts.Workers > 1 && len(files) > 1 {
		l.diag = &lockedDiagnostics{inner: l.diag}
		err = l.loadParallel(ctx, files, d)
	} else {
		err = l.loadSequential(ctx, files, d)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Regular files at path, in lexical order. A file path is returned as is.
// Symlinked files are included; symlinked directories are not followed, so link cycles are never walked.
func ListFiles(path string, skipHidden bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	if !info.IsDir() {
		if !info.Mode().IsRegular() {
			return nil, &IOError{Path: path, Err: ErrNotRegular}
		}
		return []string{path}, nil
	}
	root, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}

	var files []string
	err = filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if skipHidden && p != root && isHidden(entry.Name()) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		switch {
		case entry.Type().IsRegular():
			files = append(files, p)
		case entry.Type()&fs.ModeSymlink != 0:
			target, err := os.Stat(p)
			if err != nil {
				return err
			}
			if target.Mode().IsRegular() {
				files = append(files, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	return files, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func (l *loader[T]) loadSequential(ctx context.Context, files []string, d *Dataset[T]) error {
	for _, path := range files {
		st, err := l.parseFile(ctx, path, d.m.Put)
		if err != nil {
			return err
		}
		d.Stats.add(st)
	}
	return nil
}

// Lines of one file, in file order. Only merged once the file has been read completely.
type chunk[T rule.Value] struct {
	ids   []int64
	vals  []T
	stats Stats
}

func (c *chunk[T]) put(id int64, v T) bool {
	c.ids = append(c.ids, id)
	c.vals = append(c.vals, v)
	return false
}

// Files are parsed concurrently into chunks, which are merged in file order; the result is the same as loadSequential.
// At most Workers files are parsed or waiting to be merged at any time, which bounds the chunks held in memory.
func (l *loader[T]) loadParallel(ctx context.Context, files []string, d *Dataset[T]) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Workers)

	chunks := make([]chan *chunk[T], len(files))
	for i := range chunks {
		chunks[i] = make(chan *chunk[T], 1)
	}
	tokens := make(chan struct{}, l.opts.Workers) // One per file launched but not yet merged.
	waitErr := make(chan error, 1)
	go func() {
		launched := 0
	launch:
		for i, path := range files {
			select {
			case tokens <- struct{}{}:
			case <-gctx.Done():
				break launch
			}
			launched++
			g.Go(func() error {
				c := &chunk[T]{}
				st, err := l.parseFile(gctx, path, c.put)
				if err != nil {
					return err
				}
				c.stats = st
				chunks[i] <- c
				return nil
			})
		}
		err := g.Wait()
		if err == nil && launched < len(files) {
			err = ctx.Err()
		}
		waitErr <- err
	}()

	finished := false // All workers returned without error; remaining chunks are buffered.
	for i := range files {
		var c *chunk[T]
		if finished {
			c = <-chunks[i]
		} else {
			select {
			case c = <-chunks[i]:
			case <-gctx.Done():
				if err := <-waitErr; err != nil {
					return err
				}
				finished = true
				c = <-chunks[i]
			}
		}
		for k := range c.ids {
			if d.m.Put(c.ids[k], c.vals[k]) {
				c.stats.Overwritten++
			}
		}
		d.Stats.add(c.stats)
		chunks[i] = nil
		<-tokens
	}
	if !finished {
		return <-waitErr
	}
	return nil
}

func (l *loader[T]) parseFile(ctx context.Context, path string, put func(int64, T) bool) (st Stats, err error) {
	if err := ctx.Err(); err != nil {
		return st, err
	}
	rc, err := l.open(path)
	if err != nil {
		return st, &IOError{Path: path, Err: err}
	}
	defer rc.Close()
	st.Files = 1

	scanner := utils.FastFileLines{Max: l.opts.MaxLineBytes}
	for {
		raw, err := scanner.Scan(rc)
		if err == io.EOF {
			break
		} else if errors.Is(err, utils.ErrLineTooLong) {
			if err := l.countLine(ctx, path, &st); err != nil {
				return st, err
			}
			st.Skipped++
			l.diag.SkippedLine(path, string(utils.TrimSpace(raw))+"...", err)
			continue
		} else if err != nil {
			return st, &IOError{Path: path, Err: err}
		}
		line := utils.TrimSpace(raw)
		if len(line) == 0 {
			continue
		}
		if err := l.countLine(ctx, path, &st); err != nil {
			return st, err
		}

		id, v, err := l.parseLine(line)
		if err != nil {
			st.Skipped++
			l.diag.SkippedLine(path, string(line), err)
			continue
		}
		if put(id, v) {
			st.Overwritten++
		}
	}
	l.diag.FileParsed(path, st.Lines, st.Skipped)
	return st, nil
}

// Counts one non-empty line. Checks for cancellation every scanBatch lines of a file, and reports
// checkpoints every checkpointLines lines of the whole load.
func (l *loader[T]) countLine(ctx context.Context, path string, st *Stats) error {
	st.Lines++
	total := l.lines.Add(1)
	if st.Lines%scanBatch == 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if l.progress != nil {
			l.progress.Do(func() { l.diag.Checkpoint(path, total) })
		}
	}
	if total%l.checkpointLines == 0 {
		l.diag.Checkpoint(path, total)
	}
	return nil
}

// The line is trimmed and non-empty. Errors never reference the line buffer.
func (l *loader[T]) parseLine(line []byte) (id int64, v T, err error) {
	idTok, rest := utils.SplitFirstField(line)
	id, err = strconv.ParseInt(utils.UnsafeString(idTok), 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, v, fmt.Errorf("%w '%s': %w", ErrInvalidID, string(idTok), err)
	}
	v, err = l.rule.Parse(utils.UnsafeString(rest))
	if err != nil {
		// The buffer behind rest is reused; parse a copy so the error can outlive the line.
		_, err = l.rule.Parse(string(rest))
		return 0, v, err
	}
	return id, v, nil
}
