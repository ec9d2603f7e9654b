package dataset

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/ScottSallinen/lp-validate/utils"
)

// Sink for what happens during a load that is not part of the result.
type Diagnostics interface {
	// A line was dropped because its id or value did not parse.
	SkippedLine(file string, line string, err error)
	// Periodic progress: lines read so far over the whole load, reported while reading file.
	Checkpoint(file string, lines uint64)
	// A file was fully read.
	FileParsed(file string, lines uint64, skipped uint64)
}

// Drops everything.
type Discard struct{}

func (Discard) SkippedLine(string, string, error) {}
func (Discard) Checkpoint(string, uint64)         {}
func (Discard) FileParsed(string, uint64, uint64) {}

// Writes diagnostics to a zerolog logger: skipped lines at warn, checkpoints at debug (with memory stats),
// and parsed files at info.
type LogDiagnostics struct {
	Log zerolog.Logger
}

func NewLogDiagnostics(l zerolog.Logger) LogDiagnostics {
	return LogDiagnostics{Log: l}
}

func (d LogDiagnostics) SkippedLine(file string, line string, err error) {
	d.Log.Warn().Err(err).Str("file", file).Msg("Skipped invalid line '" + line + "'")
}

func (d LogDiagnostics) Checkpoint(file string, lines uint64) {
	d.Log.Debug().Msg("Parsed " + utils.V(lines) + " lines from " + file + ". " + utils.MemoryStats())
}

func (d LogDiagnostics) FileParsed(file string, lines uint64, skipped uint64) {
	d.Log.Info().Msg("Parsed " + utils.V(lines) + " lines from " + file + " (" + utils.V(skipped) + " skipped)")
}

// Serializes calls into a sink that is not safe for concurrent use.
type lockedDiagnostics struct {
	mu    sync.Mutex
	inner Diagnostics
}

func (d *lockedDiagnostics) SkippedLine(file string, line string, err error) {
	d.mu.Lock()
	d.inner.SkippedLine(file, line, err)
	d.mu.Unlock()
}

func (d *lockedDiagnostics) Checkpoint(file string, lines uint64) {
	d.mu.Lock()
	d.inner.Checkpoint(file, lines)
	d.mu.Unlock()
}

func (d *lockedDiagnostics) FileParsed(file string, lines uint64, skipped uint64) {
	d.mu.Lock()
	d.inner.FileParsed(file, lines, skipped)
	d.mu.Unlock()
}
