package fsstate

import (
	"github.com/mit-pdos/go-journal/common"
	"github.com/mit-pdos/go-journal/util"
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-sfs/alloc"
	"github.com/mit-pdos/go-sfs/bcache"
	"github.com/mit-pdos/go-sfs/layout"
)

// FsState is everything a mounted image keeps in memory: the
// superblock, the free bitmap and the block cache.
//
// The superblock and bitmap are loaded once and never written back;
// SuperDirty records that they have diverged from the disk.
type FsState struct {
	Disk       disk.Disk
	Super      *layout.Super
	Balloc     *alloc.Alloc
	Bcache     *bcache.Bcache
	SuperDirty bool
}

func readFreemap(d disk.Disk) []byte {
	blk := d.Read(layout.FREEMAPBNUM)
	bitmap := make([]byte, layout.FREEMAPSZ)
	copy(bitmap, blk)
	return bitmap
}

func MkFsState(d disk.Disk, nbucket uint64) (*FsState, error) {
	super := layout.DecodeSuper(d.Read(layout.SUPERBNUM))
	if super.Magic != layout.MAGIC {
		util.DPrintf(0, "MkFsState: bad magic 0x%x\n", super.Magic)
		return nil, layout.ErrBadMagic
	}
	util.DPrintf(1, "Super: %v\n", super)
	st := &FsState{
		Disk:   d,
		Super:  super,
		Balloc: alloc.MkAlloc(readFreemap(d)),
		Bcache: bcache.MkBcache(d, nbucket),
	}
	root := layout.DecodeInode(d.Read(layout.ROOTBNUM))
	st.Bcache.Install(bcache.MkInodeSlot(layout.ROOTBNUM, root))
	return st, nil
}

func (st *FsState) AssertValidBlock(bn common.Bnum) {
	if bn >= st.Disk.Size() {
		panic("invalid blkno")
	}
}

// AllocBlock claims a block number. Returns NULLBNUM if the image is
// full.
func (st *FsState) AllocBlock() common.Bnum {
	n, ok := st.Balloc.AllocNum()
	if !ok {
		return common.NULLBNUM
	}
	if n >= st.Disk.Size() {
		// bitmap covers more blocks than the device has
		util.DPrintf(0, "AllocBlock: %d beyond disk size %d\n", n, st.Disk.Size())
		return common.NULLBNUM
	}
	if st.Super.UnusedBlocks > 0 {
		st.Super.UnusedBlocks--
	}
	st.SuperDirty = true
	util.DPrintf(1, "alloc block -> %v\n", n)
	return n
}

// CreateInode allocates a block for a new, empty inode and installs it
// dirty in the cache.
func (st *FsState) CreateInode(kind layout.Ftype) common.Bnum {
	bn := st.AllocBlock()
	if bn == common.NULLBNUM {
		return bn
	}
	st.Bcache.InstallDirty(bcache.MkInodeSlot(bn, layout.MkInode(kind)))
	return bn
}

func (st *FsState) CreateDirEnt(name string, inum common.Inum) common.Bnum {
	bn := st.AllocBlock()
	if bn == common.NULLBNUM {
		return bn
	}
	de := &layout.DirEnt{Inum: inum, Name: name}
	st.Bcache.InstallDirty(bcache.MkDirEntSlot(bn, de))
	return bn
}

func (st *FsState) CreateData() common.Bnum {
	bn := st.AllocBlock()
	if bn == common.NULLBNUM {
		return bn
	}
	st.Bcache.InstallDirty(bcache.MkDataSlot(bn, nil))
	return bn
}

func (st *FsState) Inode(bn common.Bnum) *layout.Inode {
	return st.Bcache.Fetch(bn, bcache.INODE).Inode
}

func (st *FsState) DirEnt(bn common.Bnum) *layout.DirEnt {
	return st.Bcache.Fetch(bn, bcache.DIRENT).Ent
}

// ModifyInode applies f to the cached inode bn and marks it dirty. The
// inode must not be held across calls that may install other blocks;
// ModifyInode fetches it again each time.
func (st *FsState) ModifyInode(bn common.Bnum, f func(ip *layout.Inode)) {
	s := st.Bcache.Fetch(bn, bcache.INODE)
	f(s.Inode)
	st.Bcache.SetDirty(s)
}

func (st *FsState) ModifyData(bn common.Bnum, f func(blk disk.Block)) {
	s := st.Bcache.Fetch(bn, bcache.BLOCK)
	f(s.Data)
	st.Bcache.SetDirty(s)
}

// Flush writes back every dirty cached block. The superblock and
// bitmap are not part of the cache and stay unflushed.
func (st *FsState) Flush() {
	util.DPrintf(1, "Flush: %d dirty\n", st.Bcache.NDirty())
	st.Bcache.Flush()
}

func (st *FsState) Data(bn common.Bnum) disk.Block {
	return st.Bcache.Fetch(bn, bcache.BLOCK).Data
}
