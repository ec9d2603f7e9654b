// Package dataset loads vertex value files into memory-compact, read-only datasets.
//
// A dataset file holds one vertex per line, "<vertex_id> <value_text>". A path may be a single file or a directory
// tree of part files; directories are read in lexical order, and when an id appears more than once the last
// occurrence wins. Lines that do not parse are skipped and reported to a Diagnostics sink.
package dataset

import (
	"github.com/ScottSallinen/lp-validate/rule"
)

// Counters describing how a dataset was built.
type Stats struct {
	Files       uint64 // Files visited.
	Lines       uint64 // Non-empty lines read.
	Skipped     uint64 // Lines dropped because the id or value did not parse.
	Overwritten uint64 // Lines whose id was already present (last write wins).
}

func (s *Stats) add(o Stats) {
	s.Files += o.Files
	s.Lines += o.Lines
	s.Skipped += o.Skipped
	s.Overwritten += o.Overwritten
}

// Mapping from vertex id to value. Read only once returned by Load.
type Dataset[T rule.Value] struct {
	Path  string
	Stats Stats
	m     *packedMap[T]
}

// Empty dataset; mostly for composing tests.
func New[T rule.Value]() *Dataset[T] {
	return &Dataset[T]{m: newPackedMap[T](0)}
}

// Builds a dataset from pairs in order, later pairs overwriting earlier ones.
func FromPairs[T rule.Value](ids []int64, vals []T) *Dataset[T] {
	d := &Dataset[T]{m: newPackedMap[T](uint64(len(ids)))}
	for i := range ids {
		d.Stats.Lines++
		if d.m.Put(ids[i], vals[i]) {
			d.Stats.Overwritten++
		}
	}
	return d
}

// Number of distinct vertex ids.
func (d *Dataset[T]) Size() int {
	return int(d.m.Len())
}

func (d *Dataset[T]) Get(id int64) (T, bool) {
	return d.m.Get(id)
}

func (d *Dataset[T]) Contains(id int64) bool {
	_, ok := d.m.Get(id)
	return ok
}

// Visits every entry. The order is unspecified but the same for datasets built from the same input.
func (d *Dataset[T]) ForEach(f func(id int64, v T)) {
	d.m.ForEach(f)
}

// Same ids with identical values.
func (d *Dataset[T]) Equal(o *Dataset[T]) bool {
	if d.Size() != o.Size() {
		return false
	}
	equal := true
	d.ForEach(func(id int64, v T) {
		if !equal {
			return
		}
		ov, ok := o.Get(id)
		equal = ok && (ov == v || (ov != ov && v != v))
	})
	return equal
}
