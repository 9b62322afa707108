// Package sfs is the file system as a process sees it: open, close,
// seek, read, write and list over a block device formatted by mkfs.
package sfs

import (
	"io"
	"sync"

	"github.com/mit-pdos/go-journal/util"
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-sfs/fsstate"
)

type Config struct {
	Buckets uint64 // block cache size; 0 is bcache.NBUCKET
}

type Fs struct {
	mu  *sync.Mutex
	d   disk.Disk
	cfg Config
	st  *fsstate.FsState
}

func MkFs(d disk.Disk) *Fs {
	return MkFsConfig(d, Config{})
}

func MkFsConfig(d disk.Disk, cfg Config) *Fs {
	return &Fs{
		mu:  new(sync.Mutex),
		d:   d,
		cfg: cfg,
	}
}

// Init loads the superblock, the free bitmap and the root inode. Every
// operation calls it, so mounting happens on first use; later calls
// keep the existing state.
func (fs *Fs) Init() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.init()
}

func (fs *Fs) init() error {
	if fs.st != nil {
		return nil
	}
	st, err := fsstate.MkFsState(fs.d, fs.cfg.Buckets)
	if err != nil {
		return err
	}
	util.DPrintf(0, "Init: %v, %d buckets\n", st.Super, st.Bcache.NBucket())
	fs.st = st
	return nil
}

// Sync writes every dirty cached block to the device. The superblock
// and free bitmap stay in memory only.
func (fs *Fs) Sync() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.init(); err != nil {
		return err
	}
	fs.st.Flush()
	fs.d.Barrier()
	return nil
}

func (fs *Fs) Shutdown() {
	util.DPrintf(1, "Shutdown\n")
	fs.mu.Lock()
	if fs.st != nil {
		fs.st.Flush()
	}
	fs.d.Barrier()
	fs.d.Close()
	fs.mu.Unlock()
	util.DPrintf(1, "Shutdown done\n")
}

// State exposes the mounted state, or nil before the first operation.
func (fs *Fs) State() *fsstate.FsState {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.st
}

func (fs *Fs) WriteStats(w io.Writer) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.st != nil {
		fs.st.Bcache.WriteStats(w)
	}
}

func (fs *Fs) ResetStats() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.st != nil {
		fs.st.Bcache.ResetStats()
	}
}
