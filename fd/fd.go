package fd

import (
	"fmt"

	"github.com/mit-pdos/go-journal/common"

	"github.com/mit-pdos/go-sfs/layout"
)

const NFILE = 16 // # open files per table

// File is an open descriptor: the inode it names, the current offset,
// the flags it was opened with and a copy of the inode taken at open
// and refreshed when a write grows the file.
type File struct {
	Inum  common.Inum
	Off   uint64
	Flags uint32
	Inode layout.Inode
}

func (f *File) Readable() bool {
	return f.Flags&layout.READ != 0
}

func (f *File) Writable() bool {
	return f.Flags&layout.READ != 0 && f.Flags&layout.WRITE != 0
}

func (f *File) String() string {
	return fmt.Sprintf("# %d off %d flags 0x%x %v", f.Inum, f.Off, f.Flags, &f.Inode)
}

// Table is one process's descriptor table.
type Table struct {
	files [NFILE]*File
}

func MkTable() *Table {
	return &Table{}
}

// alloc places f at the lowest free index.
func (t *Table) alloc(f *File) (int, bool) {
	for i, slot := range t.files {
		if slot == nil {
			t.files[i] = f
			return i, true
		}
	}
	return -1, false
}

// Get returns the file open at fd, or nil.
func (t *Table) Get(fd int) *File {
	if fd < 0 || fd >= NFILE {
		return nil
	}
	return t.files[fd]
}

func (t *Table) release(fd int) {
	t.files[fd] = nil
}

func (t *Table) Full() bool {
	return t.NOpen() == NFILE
}

func (t *Table) NOpen() int {
	var n int
	for _, f := range t.files {
		if f != nil {
			n++
		}
	}
	return n
}
