package bcache

import (
	"fmt"

	"github.com/mit-pdos/go-journal/common"
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-sfs/layout"
)

type Kind uint32

// Kind of block held by a slot:
const (
	BLOCK  Kind = 0 // file data
	INODE  Kind = 1 // inode or chained extension
	DIRENT Kind = 2 // directory entry
)

func (k Kind) String() string {
	switch k {
	case BLOCK:
		return "block"
	case INODE:
		return "inode"
	case DIRENT:
		return "dirent"
	}
	return fmt.Sprintf("kind(%d)", uint32(k))
}

// Slot is one cached block. Exactly one of Data, Inode and Ent is set,
// selected by Kind.
type Slot struct {
	Kind  Kind
	Bnum  common.Bnum
	dirty bool // has the payload diverged from the disk copy?

	Data  disk.Block
	Inode *layout.Inode
	Ent   *layout.DirEnt
}

func MkDataSlot(bn common.Bnum, blk disk.Block) *Slot {
	if blk == nil {
		blk = make(disk.Block, disk.BlockSize)
	}
	return &Slot{Kind: BLOCK, Bnum: bn, Data: blk}
}

func MkInodeSlot(bn common.Bnum, ip *layout.Inode) *Slot {
	return &Slot{Kind: INODE, Bnum: bn, Inode: ip}
}

func MkDirEntSlot(bn common.Bnum, de *layout.DirEnt) *Slot {
	return &Slot{Kind: DIRENT, Bnum: bn, Ent: de}
}

func decodeSlot(kind Kind, bn common.Bnum, blk disk.Block) *Slot {
	switch kind {
	case BLOCK:
		return MkDataSlot(bn, blk)
	case INODE:
		return MkInodeSlot(bn, layout.DecodeInode(blk))
	case DIRENT:
		return MkDirEntSlot(bn, layout.DecodeDirEnt(blk))
	}
	panic("decodeSlot")
}

func (s *Slot) encode() disk.Block {
	switch s.Kind {
	case BLOCK:
		return s.Data
	case INODE:
		return s.Inode.Encode()
	case DIRENT:
		return s.Ent.Encode()
	}
	panic("encode")
}

func (s *Slot) Dirty() bool {
	return s.dirty
}

func (s *Slot) String() string {
	return fmt.Sprintf("%v %d dirty %v", s.Kind, s.Bnum, s.dirty)
}
