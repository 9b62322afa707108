package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mit-pdos/go-journal/util"
	"github.com/rodaine/table"
	"github.com/tchajed/goose/machine/disk"
	"golang.org/x/sys/unix"

	"github.com/mit-pdos/go-sfs/fd"
	"github.com/mit-pdos/go-sfs/mkfs"
	"github.com/mit-pdos/go-sfs/sfs"
	"github.com/mit-pdos/go-sfs/util/timed_disk"
)

// lockImage takes an exclusive lock on a disk image so that two
// processes never mount it at once.
func lockImage(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, err
	}
	err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s is in use: %w", path, err)
	}
	return f, nil
}

// The free bitmap is never written back, so an image this process did
// not format has a stale one; allocating from it would reuse live blocks.
var errReadOnly = errors.New("read-only: image was not formatted by this session (use -mkfs)")

type shell struct {
	fs       *sfs.Fs
	fds      *fd.Table
	readOnly bool
}

func mutates(cmd string) bool {
	switch cmd {
	case "write", "put", "touch", "mkdir":
		return true
	}
	return false
}

func (sh *shell) cat(path string) error {
	fd, err := sh.fs.Open(sh.fds, path, sfs.READ)
	if err != nil {
		return err
	}
	defer sh.fs.Close(sh.fds, fd)
	buf := make([]byte, disk.BlockSize)
	for {
		n, err := sh.fs.Read(sh.fds, fd, buf)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		os.Stdout.Write(buf[:n])
	}
	fmt.Println()
	return nil
}

// write appends data to path, creating it.
func (sh *shell) write(path string, data []byte) error {
	fd, err := sh.fs.Open(sh.fds, path, sfs.READ|sfs.WRITE)
	if err != nil {
		return err
	}
	defer sh.fs.Close(sh.fds, fd)
	if _, err := sh.fs.Seek(sh.fds, fd, 0, sfs.SEEK_END); err != nil {
		return err
	}
	_, err = sh.fs.Write(sh.fds, fd, data)
	return err
}

func (sh *shell) ls(path string) error {
	names, err := sh.fs.List(path)
	if err != nil {
		return err
	}
	tbl := table.New("Name", "Kind", "Size", "Blocks").WithWriter(os.Stdout)
	for _, name := range names {
		attr, err := sh.fs.Stat(strings.TrimSuffix(path, "/") + "/" + name)
		if err != nil {
			return err
		}
		tbl.AddRow(name, attr.Kind, attr.Size, attr.Blocks)
	}
	tbl.Print()
	return nil
}

func (sh *shell) run(line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}
	if sh.readOnly && mutates(args[0]) {
		return errReadOnly
	}
	switch args[0] {
	case "ls":
		if len(args) < 2 {
			args = append(args, "/")
		}
		return sh.ls(args[1])
	case "cat":
		if len(args) != 2 {
			return fmt.Errorf("usage: cat PATH")
		}
		return sh.cat(args[1])
	case "write":
		if len(args) < 3 {
			return fmt.Errorf("usage: write PATH TEXT...")
		}
		return sh.write(args[1], []byte(strings.Join(args[2:], " ")))
	case "put":
		if len(args) != 3 {
			return fmt.Errorf("usage: put PATH HOSTFILE")
		}
		data, err := ioutil.ReadFile(args[2])
		if err != nil {
			return err
		}
		return sh.write(args[1], data)
	case "touch", "mkdir":
		if len(args) != 2 {
			return fmt.Errorf("usage: %s PATH", args[0])
		}
		path := args[1]
		if args[0] == "mkdir" && !strings.HasSuffix(path, "/") {
			path += "/"
		}
		fd, err := sh.fs.Open(sh.fds, path, sfs.WRITE)
		if err != nil {
			return err
		}
		return sh.fs.Close(sh.fds, fd)
	case "stat":
		if len(args) != 2 {
			return fmt.Errorf("usage: stat PATH")
		}
		attr, err := sh.fs.Stat(args[1])
		if err != nil {
			return err
		}
		fmt.Println(attr)
	case "sync":
		return sh.fs.Sync()
	case "stats":
		sh.fs.WriteStats(os.Stdout)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

func main() {
	var diskfile string
	flag.StringVar(&diskfile, "disk", "", "disk image (empty for MemDisk)")

	var diskBlocks uint64
	flag.Uint64Var(&diskBlocks, "size", 10*1000, "size of file system (in blocks)")

	var format bool
	flag.BoolVar(&format, "mkfs", false, "format the disk before mounting")

	var info string
	flag.StringVar(&info, "info", mkfs.DEFAULTINFO, "superblock info string")

	var buckets uint64
	flag.Uint64Var(&buckets, "buckets", 0, "block cache buckets (0 for default)")

	var dumpStats bool
	flag.BoolVar(&dumpStats, "stats", false, "dump stats to stderr at end")

	flag.Uint64Var(&util.Debug, "debug", 0, "debug level (higher is more verbose)")
	flag.Parse()

	var d disk.Disk
	if diskfile == "" {
		d = disk.NewMemDisk(diskBlocks)
		format = true
	} else {
		lock, err := lockImage(diskfile)
		if err != nil {
			log.Fatal(err)
		}
		defer lock.Close()
		d, err = disk.NewFileDisk(diskfile, diskBlocks)
		if err != nil {
			log.Fatal(fmt.Errorf("could not create disk: %w", err))
		}
	}
	if dumpStats {
		d = timed_disk.New(d)
	}
	if format {
		if err := mkfs.Mkfs(d, info); err != nil {
			log.Fatal(err)
		}
	}

	fs := sfs.MkFsConfig(d, sfs.Config{Buckets: buckets})
	if err := fs.Init(); err != nil {
		log.Fatal(fmt.Errorf("mount %s: %w", diskfile, err))
	}
	defer fs.Shutdown()

	if dumpStats {
		statSig := make(chan os.Signal, 1)
		signal.Notify(statSig, syscall.SIGUSR1)
		go func() {
			for {
				<-statSig
				fs.WriteStats(os.Stderr)
				fs.ResetStats()
				d := d.(*timed_disk.Disk)
				d.WriteStats(os.Stderr)
				d.ResetStats()
			}
		}()
	}

	sh := &shell{fs: fs, fds: fd.MkTable(), readOnly: !format}
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "quit" || line == "exit" {
			break
		}
		if err := sh.run(line); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", line, err)
		}
	}

	if dumpStats {
		fs.WriteStats(os.Stderr)
		d.(*timed_disk.Disk).WriteStats(os.Stderr)
	}
}
