package layout

import (
	"github.com/mit-pdos/go-journal/common"
	"github.com/tchajed/goose/machine/disk"
	"github.com/tchajed/marshal"
)

// DirEnt occupies a block of its own: the inode number, then a NUL
// padded name.
type DirEnt struct {
	Inum common.Inum
	Name string // <= MAXNAMELEN
}

func IllegalName(name string) bool {
	return uint64(len(name)) > MAXNAMELEN
}

// Caller must ensure de.Name fits
func (de *DirEnt) Encode() disk.Block {
	enc := marshal.NewEnc(disk.BlockSize)
	enc.PutInt32(uint32(de.Inum))
	enc.PutBytes(padName(de.Name, MAXNAMELEN+1))
	return enc.Finish()
}

func DecodeDirEnt(blk disk.Block) *DirEnt {
	de := &DirEnt{}
	dec := marshal.NewDec(blk)
	de.Inum = common.Inum(dec.GetInt32())
	de.Name = cstring(dec.GetBytes(MAXNAMELEN + 1))
	return de
}
