package mkfs

import (
	"fmt"

	"github.com/mit-pdos/go-journal/common"
	"github.com/mit-pdos/go-journal/util"
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-sfs/alloc"
	"github.com/mit-pdos/go-sfs/layout"
)

//
// mkfs
//

const DEFAULTINFO = "simple file system"

// Blocks reserved by the layout, plus "." and ".." of the root.
const NRESERVED uint64 = 5

// Mkfs writes an empty file system to d: a superblock, a root directory
// holding "." and "..", and a bitmap that marks every block the device
// does not have as in use.
func Mkfs(d disk.Disk, info string) error {
	sz := d.Size()
	if sz < NRESERVED+1 {
		return fmt.Errorf("mkfs: disk too small (%d blocks)", sz)
	}
	nblocks := util.Min(sz, layout.MAXBLOCKS)
	util.DPrintf(0, "Mkfs: %d blocks (disk %d)\n", nblocks, sz)

	balloc := alloc.MkAlloc(make([]byte, layout.FREEMAPSZ))
	balloc.MarkUsed(layout.SUPERBNUM)
	balloc.MarkUsed(layout.ROOTBNUM)
	balloc.MarkUsed(layout.FREEMAPBNUM)
	markAlloc(balloc, nblocks)

	dot, _ := balloc.AllocNum()
	dotdot, _ := balloc.AllocNum()
	d.Write(dot, (&layout.DirEnt{Inum: common.ROOTINUM, Name: "."}).Encode())
	d.Write(dotdot, (&layout.DirEnt{Inum: common.ROOTINUM, Name: ".."}).Encode())

	root := layout.MkInode(layout.DIR)
	root.Direct[0] = dot
	root.Direct[1] = dotdot
	root.Blocks = 2
	util.DPrintf(5, "root %v\n", root)
	d.Write(layout.ROOTBNUM, root.Encode())

	blk := make(disk.Block, disk.BlockSize)
	copy(blk, balloc.Bitmap())
	d.Write(layout.FREEMAPBNUM, blk)

	super := layout.MkSuper(nblocks, info)
	super.UnusedBlocks = uint32(nblocks - NRESERVED)
	d.Write(layout.SUPERBNUM, super.Encode())
	d.Barrier()
	return nil
}

// Mark [n, MAXBLOCKS) as allocated, so the allocator never hands out a
// block past the end of the device.
func markAlloc(balloc *alloc.Alloc, n uint64) {
	util.DPrintf(1, "markAlloc: [%d, %d)\n", n, layout.MAXBLOCKS)
	for bn := n; bn < layout.MAXBLOCKS; bn++ {
		balloc.MarkUsed(bn)
	}
}
