package fd

import (
	"github.com/mit-pdos/go-journal/common"
	"github.com/mit-pdos/go-journal/util"
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-sfs/dir"
	"github.com/mit-pdos/go-sfs/extent"
	"github.com/mit-pdos/go-sfs/fsstate"
	"github.com/mit-pdos/go-sfs/layout"
)

// Largest file the bitmap could ever back.
const MAXFILESIZE uint64 = layout.MAXBLOCKS * disk.BlockSize

// Open resolves path, creating it when flags has WRITE, and returns the
// lowest free descriptor.
func (t *Table) Open(st *fsstate.FsState, path string, flags uint32) (int, error) {
	if t.Full() {
		return -1, layout.ErrTooManyOpenFiles
	}
	inum, err := dir.Resolve(st, path, flags&layout.WRITE != 0)
	if err != nil {
		return -1, err
	}
	f := &File{Inum: inum, Flags: flags, Inode: *st.Inode(inum)}
	fd, _ := t.alloc(f)
	util.DPrintf(1, "Open %v 0x%x -> %d %v\n", path, flags, fd, f)
	return fd, nil
}

// Close writes back the file's cached blocks and inodes and releases fd.
// A directory's "." and ".." entries are left in the cache.
func (t *Table) Close(st *fsstate.FsState, fd int) error {
	f := t.Get(fd)
	if f == nil {
		return layout.ErrBadFd
	}
	var skip uint64
	if f.Inode.IsDir() {
		skip = 2
	}
	var blks []common.Bnum
	var n uint64
	extent.Walk(st, f.Inum, func(_ common.Bnum, _ uint64, bn common.Bnum) bool {
		if n >= skip {
			blks = append(blks, bn)
		}
		n++
		return true
	})
	blks = append(blks, extent.Links(st, f.Inum)...)
	blks = append(blks, f.Inum)
	for _, bn := range blks {
		if s := st.Bcache.Lookup(bn); s != nil {
			st.Bcache.WriteBack(s)
		}
	}
	util.DPrintf(1, "Close %d: %d blocks\n", fd, len(blks))
	t.release(fd)
	return nil
}

// Seek moves fd's offset. whence is one of SEEK_CUR, SEEK_SET and
// SEEK_END; the result must lie in [0, size]. SEEK_END counts back
// from the end of the file.
func (t *Table) Seek(fd int, off int32, whence int) (uint64, error) {
	f := t.Get(fd)
	if f == nil {
		return 0, layout.ErrBadFd
	}
	size := int64(f.Inode.Size)
	var pos int64
	switch whence {
	case layout.SEEK_CUR:
		pos = int64(f.Off) + int64(off)
	case layout.SEEK_SET:
		pos = int64(off)
	case layout.SEEK_END:
		pos = size - int64(off)
	default:
		return 0, layout.ErrInvalid
	}
	if pos < 0 || pos > size {
		return 0, layout.ErrOffsetOutOfRange
	}
	f.Off = uint64(pos)
	return f.Off, nil
}

// Read copies up to len(buf) bytes at fd's offset into buf and
// advances the offset. Returns 0 at end of file.
func (t *Table) Read(st *fsstate.FsState, fd int, buf []byte) (int, error) {
	f := t.Get(fd)
	if f == nil {
		return 0, layout.ErrBadFd
	}
	if f.Inode.IsDir() {
		return 0, layout.ErrIsDir
	}
	if !f.Readable() {
		return 0, layout.ErrFlagMismatch
	}
	size := uint64(f.Inode.Size)
	if f.Off >= size {
		return 0, nil
	}
	count := util.Min(uint64(len(buf)), size-f.Off)
	util.DPrintf(5, "Read %d: off %d cnt %d\n", fd, f.Off, count)
	var n uint64
	for n < count {
		off := f.Off + n
		boff := off / disk.BlockSize
		byteoff := off % disk.BlockSize
		nbytes := util.Min(disk.BlockSize-byteoff, count-n)
		bn := extent.Bmap(st, f.Inum, boff)
		if bn == common.NULLBNUM {
			panic("Read: size beyond last block")
		}
		blk := st.Data(bn)
		copy(buf[n:n+nbytes], blk[byteoff:byteoff+nbytes])
		n += nbytes
	}
	f.Off += count
	return int(count), nil
}

// bmapAlloc returns the block at logical index boff, appending fresh
// data blocks until the file has one.
func bmapAlloc(st *fsstate.FsState, ino common.Bnum, boff uint64) common.Bnum {
	for {
		bn := extent.Bmap(st, ino, boff)
		if bn != common.NULLBNUM {
			return bn
		}
		nb := st.CreateData()
		if nb == common.NULLBNUM {
			return nb
		}
		if !extent.Append(st, ino, nb) {
			return common.NULLBNUM
		}
	}
}

// Write copies buf to fd's offset, growing the file as needed. If the
// image fills up, Write returns the bytes written so far together with
// ErrNoSpace.
func (t *Table) Write(st *fsstate.FsState, fd int, buf []byte) (int, error) {
	f := t.Get(fd)
	if f == nil {
		return 0, layout.ErrBadFd
	}
	if f.Inode.IsDir() {
		return 0, layout.ErrIsDir
	}
	if !f.Writable() {
		return 0, layout.ErrFlagMismatch
	}
	count := uint64(len(buf))
	if f.Off+count > MAXFILESIZE {
		return 0, layout.ErrNoSpace
	}
	util.DPrintf(5, "Write %d: off %d cnt %d\n", fd, f.Off, count)
	var n uint64
	var err error
	for n < count {
		off := f.Off + n
		boff := off / disk.BlockSize
		byteoff := off % disk.BlockSize
		nbytes := util.Min(disk.BlockSize-byteoff, count-n)
		bn := bmapAlloc(st, f.Inum, boff)
		if bn == common.NULLBNUM {
			err = layout.ErrNoSpace
			break
		}
		data := buf[n : n+nbytes]
		st.ModifyData(bn, func(blk disk.Block) {
			copy(blk[byteoff:], data)
		})
		n += nbytes
	}
	end := f.Off + n
	if end > uint64(f.Inode.Size) {
		st.ModifyInode(f.Inum, func(ip *layout.Inode) {
			if end > uint64(ip.Size) {
				ip.Size = uint32(end)
			}
		})
		f.Inode = *st.Inode(f.Inum)
	}
	f.Off = end
	util.DPrintf(1, "Write %d: cnt %d size %d\n", fd, n, f.Inode.Size)
	return int(n), err
}
