package utils

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression of an input file, decided by its extension.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
	CompressionLZ4
)

func CompressionOf(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	}
	return CompressionNone
}

type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() (err error) {
	for i := len(r.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, r.closers[i]())
	}
	return err
}

// Opens the file at path, transparently decompressing it when the extension says so.
func OpenReader(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc := &readCloser{Reader: file, closers: []func() error{file.Close}}

	switch CompressionOf(path) {
	case CompressionGzip:
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, err
		}
		rc.Reader = gz
		rc.closers = append(rc.closers, gz.Close)
	case CompressionZstd:
		dec, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, err
		}
		rc.Reader = dec
		rc.closers = append(rc.closers, func() error { dec.Close(); return nil })
	case CompressionLZ4:
		rc.Reader = lz4.NewReader(file)
	}
	return rc, nil
}

// const SPACE_MASK covers '\t', '\n', '\v', '\f', '\r' and ' '.
const SPACE_MASK = 1<<9 | 1<<10 | 1<<11 | 1<<12 | 1<<13 | 1<<32

func isByteSpace(b byte) bool {
	return b <= ' ' && ((SPACE_MASK & (1 << b)) != 0)
}

// ASCII whitespace trim, no allocation.
func TrimSpace(buf []byte) []byte {
	start := 0
	for start < len(buf) && isByteSpace(buf[start]) {
		start++
	}
	end := len(buf)
	for end > start && isByteSpace(buf[end-1]) {
		end--
	}
	return buf[start:end]
}

// Splits a trimmed line into its first field and the remainder after the whitespace run that follows it.
// The remainder keeps any inner whitespace. Both point into buf.
func SplitFirstField(buf []byte) (first []byte, rest []byte) {
	i := 0
	for i < len(buf) && !isByteSpace(buf[i]) {
		i++
	}
	first = buf[:i]
	for i < len(buf) && isByteSpace(buf[i]) {
		i++
	}
	return first, buf[i:]
}

const (
	defaultLineBuffer = 64 * 1024
	maxLineBuffer     = 64 * 1024 * 1024
	longLinePreview   = 64
)

// A line did not fit the scan buffer. The line is dropped; scanning continues after its newline.
var ErrLineTooLong = errors.New("line too long")

// Line scanner over a reader that reuses a single buffer; the returned line is only valid until the next call.
// The buffer doubles when a line does not fit, up to Max.
type FastFileLines struct {
	Buf   []byte
	Start int // First non-processed byte in buf.
	End   int // End of data in buf.
	Max   int // Longest line in bytes. 0 is 64MiB.
	err   error
}

// Returns the next line without its trailing newline, or nil with io.EOF when the reader is drained.
// A line longer than Max is returned as a copy of its first bytes with ErrLineTooLong.
func (s *FastFileLines) Scan(r io.Reader) ([]byte, error) {
	limit := s.Max
	if limit <= 0 {
		limit = maxLineBuffer
	}
	if s.Buf == nil {
		s.Buf = make([]byte, Min(defaultLineBuffer, limit))
	}
	for { // Until we have a token.
		if s.End > s.Start { // See if we can get a token with what we already have.
			if i := bytes.IndexByte(s.Buf[s.Start:s.End], '\n'); i >= 0 {
				token := s.Buf[s.Start : s.Start+i]
				s.Start += i + 1
				return token, nil
			}
		}
		if s.err != nil {
			// Return whatever is left, then the error.
			if s.End > s.Start {
				i := s.Start
				s.Start = s.End
				return s.Buf[i:s.End], nil
			}
			return nil, s.err
		}

		// Must read more data. Shift data to beginning of buffer if there's lots of empty space.
		if s.Start > 0 && s.Start > len(s.Buf)/2 {
			s.End = copy(s.Buf, s.Buf[s.Start:s.End])
			s.Start = 0
		}
		if s.End == len(s.Buf) {
			switch {
			case s.Start > 0:
				s.End = copy(s.Buf, s.Buf[s.Start:s.End])
				s.Start = 0
			case len(s.Buf) >= limit:
				return s.dropLine(r)
			default:
				grown := make([]byte, Min(len(s.Buf)*2, limit))
				s.End = copy(grown, s.Buf[:s.End])
				s.Buf = grown
			}
		}
		s.fill(r, s.End)
	}
}

// Reads into buf from position at, retrying empty reads.
func (s *FastFileLines) fill(r io.Reader, at int) {
	var n int
	for loop := 0; ; loop++ {
		n, s.err = r.Read(s.Buf[at:])
		s.End = at + n
		if n > 0 || s.err != nil {
			return
		}
		if loop > 100 {
			s.err = io.ErrNoProgress
			return
		}
	}
}

// The buffer holds the start of a line with no newline in sight: discard up to and including its newline.
func (s *FastFileLines) dropLine(r io.Reader) ([]byte, error) {
	preview := bytes.Clone(s.Buf[s.Start:Min(s.End, s.Start+longLinePreview)])
	s.Start, s.End = 0, 0
	for s.err == nil {
		s.fill(r, 0)
		if i := bytes.IndexByte(s.Buf[:s.End], '\n'); i >= 0 {
			s.Start = i + 1
			return preview, ErrLineTooLong
		}
		s.End = 0
	}
	return preview, ErrLineTooLong
}

// Views b as a string without copying. The string must not outlive the next write to b.
func UnsafeString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}
