package alloc

import (
	"github.com/mit-pdos/go-journal/util"
)

// Allocator uses a bit map to allocate numbers. Bit i of byte j
// corresponds to number j*8+i. Numbers are never freed: once claimed a
// number stays in use for the lifetime of the image.
type Alloc struct {
	bitmap []byte
	nalloc uint64 // # numbers claimed since MkAlloc
}

func MkAlloc(bitmap []byte) *Alloc {
	return &Alloc{bitmap: bitmap}
}

// AllocNum claims the lowest free number. Returns false if the bitmap
// is full.
func (a *Alloc) AllocNum() (uint64, bool) {
	for i, b := range a.bitmap {
		if b == 0xff {
			continue
		}
		for bit := uint64(0); bit < 8; bit++ {
			if b&(1<<bit) == 0 {
				a.bitmap[i] = b | (1 << bit)
				a.nalloc++
				num := uint64(i)*8 + bit
				util.DPrintf(5, "AllocNum -> %d\n", num)
				return num, true
			}
		}
	}
	util.DPrintf(0, "AllocNum: bitmap full\n")
	return 0, false
}

func (a *Alloc) MarkUsed(num uint64) {
	if num/8 >= uint64(len(a.bitmap)) {
		panic("MarkUsed")
	}
	a.bitmap[num/8] |= 1 << (num % 8)
}

func (a *Alloc) IsUsed(num uint64) bool {
	if num/8 >= uint64(len(a.bitmap)) {
		return true
	}
	return a.bitmap[num/8]&(1<<(num%8)) != 0
}

func (a *Alloc) NumFree() uint64 {
	var n uint64
	for _, b := range a.bitmap {
		for bit := uint64(0); bit < 8; bit++ {
			if b&(1<<bit) == 0 {
				n++
			}
		}
	}
	return n
}

func (a *Alloc) NumAlloc() uint64 {
	return a.nalloc
}

func (a *Alloc) Bitmap() []byte {
	return a.bitmap
}
