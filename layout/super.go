package layout

import (
	"bytes"
	"fmt"

	"github.com/tchajed/goose/machine/disk"
	"github.com/tchajed/marshal"
)

type Super struct {
	Magic        uint32
	Blocks       uint32
	UnusedBlocks uint32
	Info         string // <= MAXINFOLEN
}

func MkSuper(nblocks uint64, info string) *Super {
	if uint64(len(info)) > MAXINFOLEN {
		info = info[:MAXINFOLEN]
	}
	return &Super{
		Magic:        MAGIC,
		Blocks:       uint32(nblocks),
		UnusedBlocks: uint32(nblocks),
		Info:         info,
	}
}

func (s *Super) String() string {
	return fmt.Sprintf("magic 0x%x blocks %d unused %d %q", s.Magic, s.Blocks,
		s.UnusedBlocks, s.Info)
}

func (s *Super) Encode() disk.Block {
	enc := marshal.NewEnc(disk.BlockSize)
	enc.PutInt32(s.Magic)
	enc.PutInt32(s.Blocks)
	enc.PutInt32(s.UnusedBlocks)
	enc.PutBytes(padName(s.Info, MAXINFOLEN+1))
	return enc.Finish()
}

func DecodeSuper(blk disk.Block) *Super {
	s := &Super{}
	dec := marshal.NewDec(blk)
	s.Magic = dec.GetInt32()
	s.Blocks = dec.GetInt32()
	s.UnusedBlocks = dec.GetInt32()
	s.Info = cstring(dec.GetBytes(MAXINFOLEN + 1))
	return s
}

// Caller must ensure the name fits; the result is always NUL terminated.
func padName(name string, sz uint64) []byte {
	b := make([]byte, sz)
	copy(b[:sz-1], name)
	return b
}

func cstring(b []byte) string {
	n := bytes.IndexByte(b, 0)
	if n < 0 {
		n = len(b)
	}
	return string(b[:n])
}
