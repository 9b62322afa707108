// Package layout describes the SFS image format: which block holds what,
// and how the superblock, inodes and directory entries are laid out
// inside a block.
package layout

import (
	"github.com/mit-pdos/go-journal/common"
	"github.com/tchajed/goose/machine/disk"
)

// Fixed block numbers
const (
	SUPERBNUM   common.Bnum = 0
	ROOTBNUM    common.Bnum = common.ROOTINUM
	FREEMAPBNUM common.Bnum = 2
)

const (
	MAGIC      uint32 = 0x1f2f3f4f
	MAXINFOLEN uint64 = 32

	NDIRECT    uint64 = 11 // # blknos in an inode's inline table
	MAXNAMELEN uint64 = 27

	// One bitmap block, one bit per block
	FREEMAPSZ uint64 = disk.BlockSize
	MAXBLOCKS uint64 = common.NBITBLOCK
)

type Ftype uint16

const (
	FILE Ftype = 0
	DIR  Ftype = 1
)

func (k Ftype) String() string {
	if k == DIR {
		return "dir"
	}
	return "file"
}

// Open flags
const (
	READ  uint32 = 0x1
	WRITE uint32 = 0x2
)

// Seek origins. The order is not the POSIX one.
const (
	SEEK_CUR = 0
	SEEK_SET = 1
	SEEK_END = 2
)
