package utils

import (
	"math/bits"
)

// Initially inspired from https://github.com/kelindar/bitmap Thank you for using the MIT license!
// Mostly just implementing/changing for the needed use-cases.

// ------------------ Regular Bitmap ------------------

type Bitmap []uint64

// Bitmap that can hold at least size bits.
func NewBitmap(size uint64) Bitmap {
	return make(Bitmap, (size+63)>>6)
}

// Inline-able, returns false if out of range.
func (bitmap Bitmap) QuickSet(x uint64) bool {
	idx := x >> 6
	if idx >= uint64(len(bitmap)) {
		return false
	}
	bitmap[idx] |= 1 << (x % 64)
	return true
}

// Inline-able, out of range is unset.
func (bitmap Bitmap) QuickGet(x uint64) bool {
	idx := x >> 6
	if idx >= uint64(len(bitmap)) {
		return false
	}
	return bitmap[idx]&(1<<(x%64)) != 0
}

// Number of set bits.
func (bitmap Bitmap) Count() (count uint64) {
	for i := range bitmap {
		count += uint64(bits.OnesCount64(bitmap[i]))
	}
	return count
}
