package sfs

import (
	"bytes"
	"flag"
	"io/ioutil"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-sfs/fd"
	"github.com/mit-pdos/go-sfs/mkfs"
)

var quiet = flag.Bool("quiet", false, "disable logging")

const DISKSZ uint64 = 10 * 1000

func checkFlags() {
	if *quiet {
		log.SetFlags(0)
		log.SetOutput(ioutil.Discard)
	}
}

type TestState struct {
	t   *testing.T
	d   disk.Disk
	fs  *Fs
	fds *fd.Table
}

func newTestSz(t *testing.T, sz uint64, cfg Config) *TestState {
	checkFlags()
	d := disk.NewMemDisk(sz)
	require.NoError(t, mkfs.Mkfs(d, mkfs.DEFAULTINFO))
	return &TestState{t: t, d: d, fs: MkFsConfig(d, cfg), fds: fd.MkTable()}
}

func newTest(t *testing.T) *TestState {
	return newTestSz(t, DISKSZ, Config{})
}

func (ts *TestState) Open(path string, flags uint32) int {
	fd, err := ts.fs.Open(ts.fds, path, flags)
	require.NoError(ts.t, err, "Open %s", path)
	return fd
}

func (ts *TestState) Close(fd int) {
	require.NoError(ts.t, ts.fs.Close(ts.fds, fd))
}

func (ts *TestState) Write(fd int, data []byte) {
	n, err := ts.fs.Write(ts.fds, fd, data)
	require.NoError(ts.t, err)
	assert.Equal(ts.t, len(data), n)
}

func (ts *TestState) Read(fd int, cnt int) []byte {
	buf := make([]byte, cnt)
	n, err := ts.fs.Read(ts.fds, fd, buf)
	require.NoError(ts.t, err)
	return buf[:n]
}

func (ts *TestState) Seek(fd int, off int32, whence int) uint64 {
	pos, err := ts.fs.Seek(ts.fds, fd, off, whence)
	require.NoError(ts.t, err)
	return pos
}

func (ts *TestState) List(path string) []string {
	names, err := ts.fs.List(path)
	require.NoError(ts.t, err)
	return names
}

func (ts *TestState) WriteFile(path string, data []byte) {
	fd := ts.Open(path, READ|WRITE)
	ts.Write(fd, data)
	ts.Close(fd)
}

func (ts *TestState) ReadFile(path string) []byte {
	fd := ts.Open(path, READ)
	var data []byte
	for {
		b := ts.Read(fd, 4000)
		if len(b) == 0 {
			break
		}
		data = append(data, b...)
	}
	ts.Close(fd)
	return data
}

func mkdata(sz uint64) []byte {
	data := make([]byte, sz)
	for i := range data {
		data[i] = byte(i % 128)
	}
	return data
}

func TestRoundTrip(t *testing.T) {
	for _, sz := range []uint64{100, 4096, 50000} {
		ts := newTest(t)
		data := mkdata(sz)
		ts.WriteFile("/f", data)
		assert.True(t, bytes.Equal(data, ts.ReadFile("/f")), "size %d", sz)
	}
}

func TestRoundTripRemount(t *testing.T) {
	ts := newTest(t)
	data := mkdata(30000)
	ts.WriteFile("/x/y", data)
	require.NoError(t, ts.fs.Sync())

	ts1 := &TestState{t: t, d: ts.d, fs: MkFs(ts.d), fds: fd.MkTable()}
	assert.Equal(t, data, ts1.ReadFile("/x/y"))
	assert.Equal(t, []string{".", "..", "y"}, ts1.List("/x"))
}

func TestLazyCreate(t *testing.T) {
	ts := newTest(t)
	fd := ts.Open("/a/b", WRITE)
	ts.Close(fd)
	assert.Equal(t, []string{".", "..", "b"}, ts.List("/a"))
	assert.Equal(t, []string{".", "..", "a"}, ts.List("/"))
	assert.Empty(t, ts.List("/a/b"))

	_, err := ts.fs.Open(ts.fds, "/a/c", READ)
	assert.Equal(t, ErrNotFound, err)
}

func TestOpenLimit(t *testing.T) {
	ts := newTest(t)
	for i := 0; i < fd.NFILE; i++ {
		assert.Equal(t, i, ts.Open("/f", READ|WRITE))
	}
	fd, err := ts.fs.Open(ts.fds, "/f", READ)
	assert.Equal(t, ErrTooManyOpenFiles, err)
	assert.Equal(t, int32(-3), Ret(fd, err))
	ts.Close(5)
	assert.Equal(t, 5, ts.Open("/f", READ))
}

func TestSeekBoundary(t *testing.T) {
	ts := newTest(t)
	fd := ts.Open("/f", READ|WRITE)
	ts.Write(fd, mkdata(100))
	assert.Equal(t, uint64(100), ts.Seek(fd, 100, SEEK_SET))
	_, err := ts.fs.Seek(ts.fds, fd, 101, SEEK_SET)
	assert.Equal(t, ErrOffsetOutOfRange, err)
	assert.Equal(t, uint64(100), ts.Seek(fd, 0, SEEK_END))
	assert.Equal(t, uint64(0), ts.Seek(fd, 100, SEEK_END))
	_, err = ts.fs.Seek(ts.fds, fd, 101, SEEK_END)
	assert.Equal(t, ErrOffsetOutOfRange, err)
	assert.Equal(t, uint64(90), ts.Seek(fd, 10, SEEK_END))
	assert.Equal(t, uint64(95), ts.Seek(fd, 5, SEEK_CUR))
	assert.Equal(t, mkdata(100)[95:], ts.Read(fd, 50))
}

func TestAllocMonotonic(t *testing.T) {
	ts := newTest(t)
	ts.WriteFile("/a", mkdata(10))
	st := ts.fs.State()
	var last uint64
	for i := 0; i < 10; i++ {
		bn := st.AllocBlock()
		assert.Greater(t, bn, last)
		last = bn
	}
}

func TestBucketContention(t *testing.T) {
	ts := newTestSz(t, DISKSZ, Config{Buckets: 2})
	data := mkdata(20 * disk.BlockSize)
	ts.WriteFile("/d/e/f", data)
	ts.WriteFile("/d/g", mkdata(10))
	assert.Equal(t, data, ts.ReadFile("/d/e/f"))
	assert.Equal(t, []string{".", "..", "e", "g"}, ts.List("/d"))
	assert.Greater(t, ts.fs.State().Bcache.Evictions(), uint32(0))
}

func TestSizeExtension(t *testing.T) {
	ts := newTest(t)
	fd := ts.Open("/f", READ|WRITE)
	ts.Write(fd, []byte("0123456789"))
	ts.Seek(fd, 5, SEEK_SET)
	ts.Write(fd, []byte("abcdefghij"))
	ts.Close(fd)

	attr, err := ts.fs.Stat("/f")
	require.NoError(t, err)
	assert.Equal(t, uint64(15), attr.Size)
	assert.Equal(t, []byte("01234abcdefghij"), ts.ReadFile("/f"))
}

func TestLargeFile(t *testing.T) {
	ts := newTest(t)
	sz := 40 * disk.BlockSize
	data := mkdata(sz)
	ts.WriteFile("/big", data)
	attr, err := ts.fs.Stat("/big")
	require.NoError(t, err)
	assert.Equal(t, sz, attr.Size)
	assert.Equal(t, uint64(40), attr.Blocks)
	assert.Equal(t, data, ts.ReadFile("/big"))
}

func TestStat(t *testing.T) {
	ts := newTest(t)
	attr, err := ts.fs.Stat("/")
	require.NoError(t, err)
	assert.True(t, attr.Kind.String() == "dir")
	assert.Equal(t, uint64(2), attr.Blocks)

	_, err = ts.fs.Stat("/nope")
	assert.Equal(t, ErrNotFound, err)
	_, err = ts.fs.Stat("/nope")
	assert.Equal(t, ErrNotFound, err, "Stat must not create")
}

func TestBadMagic(t *testing.T) {
	fs := MkFs(disk.NewMemDisk(100))
	_, err := fs.List("/")
	assert.Equal(t, ErrBadMagic, err)
	assert.Nil(t, fs.State())
	assert.Equal(t, ErrBadMagic, fs.Init())
}

func TestRet(t *testing.T) {
	assert.Equal(t, int32(3), Ret(3, nil))
	assert.Equal(t, int32(-6), Ret(0, ErrOffsetOutOfRange))
	assert.Equal(t, int32(7), Ret(7, ErrNoSpace))
	assert.Equal(t, int32(ErrNoSpace), Ret(0, ErrNoSpace))
	assert.Equal(t, int32(ErrInvalid), Ret(0, assert.AnError))
	assert.True(t, strings.HasPrefix(ErrIsDir.Error(), "sfs: "))
}

func TestNoSpace(t *testing.T) {
	ts := newTestSz(t, 30, Config{})
	fd := ts.Open("/f", READ|WRITE)
	n, err := ts.fs.Write(ts.fds, fd, mkdata(100*disk.BlockSize))
	assert.Equal(t, ErrNoSpace, err)
	assert.Greater(t, n, 0)
	assert.Equal(t, int32(n), Ret(n, err), "short write reports its count")
	ts.Close(fd)
	attr, err := ts.fs.Stat("/f")
	require.NoError(t, err)
	assert.Equal(t, uint64(n), attr.Size)
	assert.Equal(t, mkdata(uint64(n)), ts.ReadFile("/f"))
}

func TestConcurrent(t *testing.T) {
	ts := newTest(t)
	const N = 4
	var wg sync.WaitGroup
	for i := 0; i < N; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fds := fd.MkTable()
			path := "/p/" + string(rune('a'+i))
			fd, err := ts.fs.Open(fds, path, READ|WRITE)
			assert.NoError(t, err)
			_, err = ts.fs.Write(fds, fd, mkdata(5000))
			assert.NoError(t, err)
			assert.NoError(t, ts.fs.Close(fds, fd))
		}(i)
	}
	wg.Wait()
	assert.Len(t, ts.List("/p"), N+2)
	for i := 0; i < N; i++ {
		assert.Equal(t, mkdata(5000), ts.ReadFile("/p/"+string(rune('a'+i))))
	}
}
