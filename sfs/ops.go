package sfs

import (
	"fmt"

	"github.com/mit-pdos/go-journal/common"
	"github.com/mit-pdos/go-journal/util"

	"github.com/mit-pdos/go-sfs/dir"
	"github.com/mit-pdos/go-sfs/extent"
	"github.com/mit-pdos/go-sfs/fd"
	"github.com/mit-pdos/go-sfs/layout"
)

// Attr describes a file or directory.
type Attr struct {
	Inum   common.Inum
	Kind   layout.Ftype
	Size   uint64
	Nlink  uint16
	Blocks uint64 // # blocks referenced, across the whole chain
}

func (a Attr) String() string {
	return fmt.Sprintf("# %d %v sz %d n %d nblk %d", a.Inum, a.Kind, a.Size, a.Nlink, a.Blocks)
}

// Open returns a descriptor for path in fds. Opening with WRITE creates
// the path: missing directories along the way and an empty file at the
// end.
func (fs *Fs) Open(fds *fd.Table, path string, flags uint32) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.init(); err != nil {
		return -1, err
	}
	return fds.Open(fs.st, path, flags)
}

func (fs *Fs) Close(fds *fd.Table, fd int) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.init(); err != nil {
		return err
	}
	return fds.Close(fs.st, fd)
}

func (fs *Fs) Seek(fds *fd.Table, fd int, off int32, whence int) (uint64, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.init(); err != nil {
		return 0, err
	}
	return fds.Seek(fd, off, whence)
}

func (fs *Fs) Read(fds *fd.Table, fd int, buf []byte) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.init(); err != nil {
		return 0, err
	}
	return fds.Read(fs.st, fd, buf)
}

func (fs *Fs) Write(fds *fd.Table, fd int, buf []byte) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.init(); err != nil {
		return 0, err
	}
	return fds.Write(fs.st, fd, buf)
}

// List returns the names in the directory at path, "." and ".."
// included. A file lists as empty.
func (fs *Fs) List(path string) ([]string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.init(); err != nil {
		return nil, err
	}
	names, err := dir.List(fs.st, path)
	util.DPrintf(1, "List %v -> %d %v\n", path, len(names), err)
	return names, err
}

// Stat reports on path without creating anything.
func (fs *Fs) Stat(path string) (Attr, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.init(); err != nil {
		return Attr{}, err
	}
	inum, err := dir.Resolve(fs.st, path, false)
	if err != nil {
		return Attr{}, err
	}
	ip := fs.st.Inode(inum)
	attr := Attr{
		Inum:  inum,
		Kind:  ip.Kind,
		Size:  uint64(ip.Size),
		Nlink: ip.Nlink,
	}
	attr.Blocks = extent.NBlocks(fs.st, inum)
	return attr, nil
}
