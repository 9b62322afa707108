package fuzz

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-sfs/fd"
	"github.com/mit-pdos/go-sfs/mkfs"
	"github.com/mit-pdos/go-sfs/sfs"
)

var DEBUG bool = false

var paths = []string{"/a", "/b", "/d/c", "/d/e/f"}

// MockFs models the file system as a map from path to contents.
type MockFs struct {
	data map[string][]byte
}

func NewMockFs() *MockFs {
	return &MockFs{data: make(map[string][]byte)}
}

func (md *MockFs) Write(fs *sfs.Fs, path string, off uint64, data []byte) error {
	old := md.data[path]
	if off > uint64(len(old)) {
		off = uint64(len(old))
	}
	fds := fd.MkTable()
	f, err := fs.Open(fds, path, sfs.READ|sfs.WRITE)
	if err != nil {
		return err
	}
	defer fs.Close(fds, f)
	if _, err := fs.Seek(fds, f, int32(off), sfs.SEEK_SET); err != nil {
		return err
	}
	if _, err := fs.Write(fds, f, data); err != nil {
		return err
	}
	end := off + uint64(len(data))
	nw := make([]byte, len(old))
	copy(nw, old)
	if end > uint64(len(nw)) {
		nw = append(nw, make([]byte, end-uint64(len(nw)))...)
	}
	copy(nw[off:], data)
	md.data[path] = nw
	return nil
}

func (md *MockFs) Read(fs *sfs.Fs, path string) error {
	want, ok := md.data[path]
	fds := fd.MkTable()
	f, err := fs.Open(fds, path, sfs.READ)
	if !ok {
		if err != sfs.ErrNotFound {
			return fmt.Errorf("read %s: expected not found, got %v", path, err)
		}
		return nil
	}
	if err != nil {
		return err
	}
	defer fs.Close(fds, f)
	buf := make([]byte, len(want)+1)
	n, err := fs.Read(fds, f, buf)
	if err != nil {
		return err
	}
	if !bytes.Equal(want, buf[:n]) {
		return fmt.Errorf("read %s: %d bytes differ from %d expected", path, n, len(want))
	}
	return nil
}

func Fuzz(data []byte) int {
	dataptr := 0
	getByte := func() byte {
		if dataptr >= len(data) {
			return 0
		}
		res := data[dataptr]
		dataptr++
		return res
	}
	getBytes := func(n uint64) []byte {
		res := make([]byte, n)
		resptr := uint64(0)
		for dataptr < len(data) && resptr < n {
			res[resptr] = data[dataptr]
			dataptr++
			resptr++
		}
		return res
	}
	getUint16 := func() uint64 {
		return uint64(binary.BigEndian.Uint16(getBytes(2)))
	}

	DISK_SIZE := uint64(400)
	d := disk.NewMemDisk(DISK_SIZE)
	if err := mkfs.Mkfs(d, mkfs.DEFAULTINFO); err != nil {
		panic(err)
	}
	fs := sfs.MkFsConfig(d, sfs.Config{Buckets: 8})

	md := NewMockFs()
	numWrites := 0
	numReads := 0
	for dataptr < len(data) {
		cmd := getByte() % 3
		path := paths[int(getByte())%len(paths)]
		switch cmd {
		case 0:
			// sync, then check a second, read-only mount of the image.
			// The bitmap lives in memory only, so writes keep going
			// through the first mount.
			if DEBUG {
				fmt.Printf("s\n")
			}
			if err := fs.Sync(); err != nil {
				panic(err)
			}
			fs1 := sfs.MkFs(d)
			for _, p := range paths {
				if err := md.Read(fs1, p); err != nil {
					panic(err)
				}
			}
		case 1:
			if DEBUG {
				fmt.Printf("r %s\n", path)
			}
			if err := md.Read(fs, path); err != nil {
				panic(err)
			}
			numReads++
		case 2:
			off := getUint16()
			n := getUint16() % (3 * disk.BlockSize)
			buf := getBytes(n)
			if DEBUG {
				fmt.Printf("w %s %d %d\n", path, off, n)
			}
			err := md.Write(fs, path, off, buf)
			if errors.Is(err, sfs.ErrNoSpace) {
				return 0
			}
			if err != nil {
				panic(err)
			}
			numWrites++
		}
	}
	if numWrites == 0 || numReads == 0 {
		return 0
	}
	return 1
}
