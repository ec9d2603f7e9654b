package utils

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, r io.Reader) []string {
	var s FastFileLines
	var lines []string
	for {
		line, err := s.Scan(r)
		if err == io.EOF {
			return lines
		}
		require.NoError(t, err)
		lines = append(lines, string(line))
	}
}

func Test_FastFileLines(t *testing.T) {
	input := "1 10\n2 20\n\n3 30"
	expected := []string{"1 10", "2 20", "", "3 30"}

	assert.Equal(t, expected, scanAll(t, strings.NewReader(input)))
	assert.Equal(t, expected, scanAll(t, iotest.OneByteReader(strings.NewReader(input))))
	assert.Equal(t, expected[:3], scanAll(t, strings.NewReader("1 10\n2 20\n\n")))
	assert.Empty(t, scanAll(t, strings.NewReader("")))
}

func Test_FastFileLinesGrows(t *testing.T) {
	long := strings.Repeat("x", 3*defaultLineBuffer)
	input := "1 a\n" + long + "\n2 b\n"
	assert.Equal(t, []string{"1 a", long, "2 b"}, scanAll(t, strings.NewReader(input)))
}

func Test_FastFileLinesDropsLongLines(t *testing.T) {
	input := "1 a\n" + strings.Repeat("x", 100) + "\n2 b\n" + strings.Repeat("y", 40)
	for name, r := range map[string]func() io.Reader{
		"whole":   func() io.Reader { return strings.NewReader(input) },
		"onebyte": func() io.Reader { return iotest.OneByteReader(strings.NewReader(input)) },
	} {
		t.Run(name, func(t *testing.T) {
			s := FastFileLines{Max: 16}
			reader := r()

			line, err := s.Scan(reader)
			require.NoError(t, err)
			assert.Equal(t, "1 a", string(line))

			line, err = s.Scan(reader)
			assert.ErrorIs(t, err, ErrLineTooLong)
			assert.Equal(t, strings.Repeat("x", 16), string(line))

			line, err = s.Scan(reader)
			require.NoError(t, err)
			assert.Equal(t, "2 b", string(line))

			line, err = s.Scan(reader)
			assert.ErrorIs(t, err, ErrLineTooLong)
			assert.Equal(t, strings.Repeat("y", 16), string(line))

			_, err = s.Scan(reader)
			assert.Equal(t, io.EOF, err)
			assert.Len(t, s.Buf, 16)
		})
	}
}

func Test_FastFileLinesReadError(t *testing.T) {
	var s FastFileLines
	r := iotest.TimeoutReader(strings.NewReader(strings.Repeat("1 1\n", 10)))
	_, err := s.Scan(r)
	require.NoError(t, err)
	for err == nil {
		_, err = s.Scan(r)
	}
	assert.ErrorIs(t, err, iotest.ErrTimeout)
}

func Test_SplitFirstField(t *testing.T) {
	tests := []struct {
		line  string
		first string
		rest  string
	}{
		{"1 10", "1", "10"},
		{"1\t\t10", "1", "10"},
		{"42", "42", ""},
		{"7 a b  c", "7", "a b  c"},
		{"", "", ""},
	}
	for _, tt := range tests {
		first, rest := SplitFirstField(TrimSpace([]byte(tt.line)))
		assert.Equal(t, tt.first, string(first), tt.line)
		assert.Equal(t, tt.rest, string(rest), tt.line)
	}
}

func Test_TrimSpace(t *testing.T) {
	assert.Equal(t, "1 2", string(TrimSpace([]byte(" \t1 2\r"))))
	assert.Empty(t, TrimSpace([]byte(" \t \r\n")))
}

func Test_OpenReaderCompressed(t *testing.T) {
	const content = "1 10\n2 20\n"
	dir := t.TempDir()

	var gzBuf, zstBuf, lz4Buf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	_, err := gw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	zw, err := zstd.NewWriter(&zstBuf)
	require.NoError(t, err)
	_, err = zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	lw := lz4.NewWriter(&lz4Buf)
	_, err = lw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, lw.Close())

	files := map[string][]byte{
		"plain.txt":  []byte(content),
		"part-0.gz":  gzBuf.Bytes(),
		"part-1.zst": zstBuf.Bytes(),
		"part-2.lz4": lz4Buf.Bytes(),
	}
	for name, data := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, data, 0o644))

		rc, err := OpenReader(path)
		require.NoError(t, err, name)
		got, err := io.ReadAll(rc)
		require.NoError(t, err, name)
		require.NoError(t, rc.Close(), name)
		assert.Equal(t, content, string(got), name)
	}
}

func Test_OpenReaderMissing(t *testing.T) {
	_, err := OpenReader(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
