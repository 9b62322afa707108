package dir

import (
	"strings"
	"testing"

	"github.com/mit-pdos/go-journal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-sfs/fsstate"
	"github.com/mit-pdos/go-sfs/layout"
	"github.com/mit-pdos/go-sfs/mkfs"
)

func mkState(t *testing.T, sz uint64) *fsstate.FsState {
	d := disk.NewMemDisk(sz)
	require.NoError(t, mkfs.Mkfs(d, mkfs.DEFAULTINFO))
	st, err := fsstate.MkFsState(d, 0)
	require.NoError(t, err)
	return st
}

func TestRoot(t *testing.T) {
	st := mkState(t, 100)
	inum, err := Resolve(st, "/", false)
	require.NoError(t, err)
	assert.Equal(t, common.ROOTINUM, inum)

	names, err := List(st, "/")
	require.NoError(t, err)
	assert.Equal(t, []string{".", ".."}, names)
	assert.Equal(t, common.ROOTINUM, LookupName(st, common.ROOTINUM, ".."))
}

func TestCreatePath(t *testing.T) {
	st := mkState(t, 100)
	inum, err := Resolve(st, "/a/b/c.txt", true)
	require.NoError(t, err)
	ip := st.Inode(inum)
	assert.Equal(t, layout.FILE, ip.Kind)
	assert.Equal(t, uint32(0), ip.Size)
	assert.Equal(t, uint32(1), ip.Blocks)

	// a: inode, entry, ".", ".."; b likewise; c.txt: inode, entry, data
	assert.Equal(t, uint64(4+4+3), st.Balloc.NumAlloc())

	names, err := List(st, "/a")
	require.NoError(t, err)
	assert.Equal(t, []string{".", "..", "b"}, names)
	names, err = List(st, "/a/b")
	require.NoError(t, err)
	assert.Equal(t, []string{".", "..", "c.txt"}, names)

	a, err := Resolve(st, "/a", false)
	require.NoError(t, err)
	b, err := Resolve(st, "/a/b/", false)
	require.NoError(t, err)
	assert.Equal(t, a, LookupName(st, b, ".."))
	assert.Equal(t, b, LookupName(st, b, "."))
	assert.Equal(t, common.ROOTINUM, LookupName(st, a, ".."))

	again, err := Resolve(st, "/a/b/c.txt", true)
	require.NoError(t, err)
	assert.Equal(t, inum, again)
	assert.Equal(t, uint64(11), st.Balloc.NumAlloc())
}

func TestListFile(t *testing.T) {
	st := mkState(t, 100)
	_, err := Resolve(st, "/f", true)
	require.NoError(t, err)
	names, err := List(st, "/f")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestResolveErrors(t *testing.T) {
	st := mkState(t, 100)
	_, err := Resolve(st, "a/b", true)
	assert.Equal(t, layout.ErrInvalidPath, err)
	_, err = Resolve(st, "", false)
	assert.Equal(t, layout.ErrInvalidPath, err)
	_, err = Resolve(st, "/nope", false)
	assert.Equal(t, layout.ErrNotFound, err)
	_, err = Resolve(st, "/"+strings.Repeat("x", 28), true)
	assert.Equal(t, layout.ErrNameTooLong, err)

	_, err = Resolve(st, "/f", true)
	require.NoError(t, err)
	_, err = Resolve(st, "/f/g", true)
	assert.Equal(t, layout.ErrNotDir, err)
	_, err = Resolve(st, "/f/", false)
	assert.Equal(t, layout.ErrNotDir, err)
}

func TestExactMatch(t *testing.T) {
	st := mkState(t, 100)
	ab, err := Resolve(st, "/ab", true)
	require.NoError(t, err)
	a, err := Resolve(st, "/a", true)
	require.NoError(t, err)
	assert.NotEqual(t, ab, a)
	names, _ := List(st, "/")
	assert.Equal(t, []string{".", "..", "ab", "a"}, names)
}

func TestManyEntries(t *testing.T) {
	st := mkState(t, 200)
	var want = []string{".", ".."}
	for i := 0; i < 25; i++ {
		name := "/" + strings.Repeat("n", i+1)
		_, err := Resolve(st, name, true)
		require.NoError(t, err)
		want = append(want, name[1:])
	}
	names, err := List(st, "/")
	require.NoError(t, err)
	assert.Equal(t, want, names)
	_, err = Resolve(st, "/"+strings.Repeat("n", 20), false)
	assert.NoError(t, err)
}

func TestNoSpace(t *testing.T) {
	st := mkState(t, 8)
	// three blocks left: enough for a directory's inode, entry and "."
	_, err := Resolve(st, "/d/f", true)
	assert.Equal(t, layout.ErrNoSpace, err)
}
