package fsstate

import (
	"testing"

	"github.com/mit-pdos/go-journal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-sfs/layout"
	"github.com/mit-pdos/go-sfs/mkfs"
)

func mkState(t *testing.T, sz uint64) *FsState {
	d := disk.NewMemDisk(sz)
	require.NoError(t, mkfs.Mkfs(d, mkfs.DEFAULTINFO))
	st, err := MkFsState(d, 0)
	require.NoError(t, err)
	return st
}

func TestBadMagic(t *testing.T) {
	_, err := MkFsState(disk.NewMemDisk(10), 0)
	assert.Equal(t, layout.ErrBadMagic, err)
}

func TestRootResident(t *testing.T) {
	st := mkState(t, 100)
	assert.True(t, st.Bcache.Resident(layout.ROOTBNUM))
	assert.True(t, st.Inode(layout.ROOTBNUM).IsDir())
	assert.False(t, st.SuperDirty)
}

func TestAllocBlock(t *testing.T) {
	st := mkState(t, 8)
	unused := st.Super.UnusedBlocks
	assert.Equal(t, common.Bnum(5), st.AllocBlock())
	assert.True(t, st.SuperDirty)
	assert.Equal(t, unused-1, st.Super.UnusedBlocks)
	assert.Equal(t, common.Bnum(6), st.AllocBlock())
	assert.Equal(t, common.Bnum(7), st.AllocBlock())
	assert.Equal(t, common.NULLBNUM, st.AllocBlock())
	assert.Equal(t, common.NULLBNUM, st.CreateData())
}

func TestCreate(t *testing.T) {
	st := mkState(t, 100)
	ino := st.CreateInode(layout.FILE)
	ent := st.CreateDirEnt("x", ino)
	data := st.CreateData()
	assert.Equal(t, uint64(3), st.Bcache.NDirty())

	st.ModifyInode(ino, func(ip *layout.Inode) { ip.Size = 9 })
	st.ModifyData(data, func(blk disk.Block) { blk[0] = 'z' })
	st.Flush()
	assert.Equal(t, uint64(0), st.Bcache.NDirty())

	d := st.Disk
	assert.Equal(t, uint32(9), layout.DecodeInode(d.Read(ino)).Size)
	assert.Equal(t, "x", layout.DecodeDirEnt(d.Read(ent)).Name)
	assert.Equal(t, byte('z'), d.Read(data)[0])
	assert.Equal(t, "x", st.DirEnt(ent).Name)
}

func TestSuperNotFlushed(t *testing.T) {
	st := mkState(t, 100)
	st.CreateData()
	st.Flush()
	assert.True(t, st.SuperDirty)
	super := layout.DecodeSuper(st.Disk.Read(layout.SUPERBNUM))
	assert.Equal(t, st.Super.UnusedBlocks+1, super.UnusedBlocks)

	st1, err := MkFsState(st.Disk, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), st1.Balloc.NumAlloc())
	assert.False(t, st1.SuperDirty)
}
