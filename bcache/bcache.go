package bcache

import (
	"io"

	"github.com/mit-pdos/go-journal/common"
	"github.com/mit-pdos/go-journal/util"
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-sfs/util/stats"
)

//
// Write-back block cache. The cache is direct mapped: block bn can only
// live in bucket bn % nbucket, so two blocks that collide are never
// resident at the same time. Installing a block into an occupied
// bucket writes the occupant back first.
//

const NBUCKET uint64 = 256

const (
	hitOp int = iota
	missOp
	evictOp
	writeBackOp
	nOp
)

var opNames = []string{"cache.Hit", "cache.Miss", "cache.Evict", "cache.WriteBack"}

type Bcache struct {
	d     disk.Disk
	slots []*Slot
	ops   [nOp]stats.Op
}

func MkBcache(d disk.Disk, nbucket uint64) *Bcache {
	if nbucket == 0 {
		nbucket = NBUCKET
	}
	return &Bcache{
		d:     d,
		slots: make([]*Slot, nbucket),
	}
}

func (bc *Bcache) NBucket() uint64 {
	return uint64(len(bc.slots))
}

func (bc *Bcache) bucket(bn common.Bnum) uint64 {
	return bn % uint64(len(bc.slots))
}

// Lookup returns the resident slot for bn, or nil.
func (bc *Bcache) Lookup(bn common.Bnum) *Slot {
	s := bc.slots[bc.bucket(bn)]
	if s != nil && s.Bnum == bn {
		return s
	}
	return nil
}

func (bc *Bcache) Resident(bn common.Bnum) bool {
	return bc.Lookup(bn) != nil
}

// Fetch returns the slot for bn, reading it from disk as kind on a
// miss.
func (bc *Bcache) Fetch(bn common.Bnum, kind Kind) *Slot {
	if s := bc.Lookup(bn); s != nil {
		if s.Kind != kind {
			panic("Fetch: kind mismatch")
		}
		bc.ops[hitOp].Inc()
		return s
	}
	bc.ops[missOp].Inc()
	util.DPrintf(5, "Fetch: miss %d %v\n", bn, kind)
	s := decodeSlot(kind, bn, bc.d.Read(bn))
	bc.Install(s)
	return s
}

// Install places s in its bucket, evicting a different block that
// occupies it.
func (bc *Bcache) Install(s *Slot) {
	b := bc.bucket(s.Bnum)
	old := bc.slots[b]
	if old != nil && old.Bnum != s.Bnum {
		util.DPrintf(5, "Install %d: evict %v\n", s.Bnum, old)
		bc.ops[evictOp].Inc()
		bc.WriteBack(old)
	}
	bc.slots[b] = s
}

// InstallDirty installs a slot whose payload exists only in memory.
func (bc *Bcache) InstallDirty(s *Slot) {
	bc.Install(s)
	bc.SetDirty(s)
}

// WriteBack writes a dirty slot to disk and frees its bucket. A clean
// slot stays resident.
func (bc *Bcache) WriteBack(s *Slot) {
	if !s.dirty {
		return
	}
	util.DPrintf(5, "WriteBack %v\n", s)
	bc.ops[writeBackOp].Inc()
	bc.d.Write(s.Bnum, s.encode())
	s.dirty = false
	b := bc.bucket(s.Bnum)
	if bc.slots[b] == s {
		bc.slots[b] = nil
	}
}

// SetDirty marks s as modified. s must still be resident: a caller that
// lets another install evict s and keeps mutating it would lose the
// update.
func (bc *Bcache) SetDirty(s *Slot) {
	if bc.slots[bc.bucket(s.Bnum)] != s {
		panic("SetDirty: slot not resident")
	}
	s.dirty = true
}

// Flush writes back every dirty slot.
func (bc *Bcache) Flush() {
	for _, s := range bc.slots {
		if s != nil && s.dirty {
			bc.WriteBack(s)
		}
	}
}

func (bc *Bcache) NDirty() uint64 {
	var n uint64
	for _, s := range bc.slots {
		if s != nil && s.dirty {
			n++
		}
	}
	return n
}

func (bc *Bcache) Hits() uint32 {
	return bc.ops[hitOp].Count()
}

func (bc *Bcache) Misses() uint32 {
	return bc.ops[missOp].Count()
}

func (bc *Bcache) Evictions() uint32 {
	return bc.ops[evictOp].Count()
}

func (bc *Bcache) WriteBacks() uint32 {
	return bc.ops[writeBackOp].Count()
}

func (bc *Bcache) WriteStats(w io.Writer) {
	stats.WriteCounts(opNames, bc.ops[:], w)
}

func (bc *Bcache) ResetStats() {
	for i := range bc.ops {
		bc.ops[i].Reset()
	}
}
