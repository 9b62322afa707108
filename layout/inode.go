package layout

import (
	"fmt"

	"github.com/mit-pdos/go-journal/common"
	"github.com/tchajed/goose/machine/disk"
	"github.com/tchajed/marshal"
)

// Inode is the on-disk inode; one per block. An inode whose inline
// table is full links to a chained extension inode of the same shape
// through Indirect; the extension only contributes its inline table.
type Inode struct {
	Size     uint32
	Kind     Ftype
	Nlink    uint16
	Blocks   uint32 // # occupied entries in Direct
	Direct   [NDIRECT]common.Bnum
	Indirect common.Bnum
}

func MkInode(kind Ftype) *Inode {
	return &Inode{Kind: kind, Nlink: 1}
}

func (ip *Inode) IsDir() bool {
	return ip.Kind == DIR
}

// Full reports whether the inline table has no free entry left.
func (ip *Inode) Full() bool {
	return uint64(ip.Blocks) >= NDIRECT
}

func (ip *Inode) String() string {
	return fmt.Sprintf("k %v n %d sz %d nblk %d %v ind %d", ip.Kind, ip.Nlink,
		ip.Size, ip.Blocks, ip.Direct[:ip.Blocks], ip.Indirect)
}

// Encode packs the inode the way the C struct lays it out: type and
// links are two u16s, which is the same bytes as one little-endian
// u32 with type in the low half.
func (ip *Inode) Encode() disk.Block {
	enc := marshal.NewEnc(disk.BlockSize)
	enc.PutInt32(ip.Size)
	enc.PutInt32(uint32(ip.Kind) | uint32(ip.Nlink)<<16)
	enc.PutInt32(ip.Blocks)
	for _, bn := range ip.Direct {
		enc.PutInt32(uint32(bn))
	}
	enc.PutInt32(uint32(ip.Indirect))
	return enc.Finish()
}

func DecodeInode(blk disk.Block) *Inode {
	ip := &Inode{}
	dec := marshal.NewDec(blk)
	ip.Size = dec.GetInt32()
	kl := dec.GetInt32()
	ip.Kind = Ftype(kl & 0xffff)
	ip.Nlink = uint16(kl >> 16)
	ip.Blocks = dec.GetInt32()
	for i := range ip.Direct {
		ip.Direct[i] = common.Bnum(dec.GetInt32())
	}
	ip.Indirect = common.Bnum(dec.GetInt32())
	return ip
}
