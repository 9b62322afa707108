package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-sfs/fd"
	"github.com/mit-pdos/go-sfs/mkfs"
	"github.com/mit-pdos/go-sfs/sfs"
	"github.com/mit-pdos/go-sfs/util/timed_disk"
)

const (
	FILESIZE    uint64 = 50 * 1024 * 1024
	WSIZE       uint64 = disk.BlockSize
	MB          uint64 = 1024 * 1024
	BENCHDISKSZ uint64 = 32 * 1000
)

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
var dumpStats = flag.Bool("stats", false, "dump stats to stderr at end")

func main() {
	flag.Parse()
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}
	largeFile()
}

func mkdata(sz uint64) []byte {
	data := make([]byte, sz)
	for i := range data {
		data[i] = byte(i % 128)
	}
	return data
}

func largeFile() {
	data := mkdata(WSIZE)
	td := timed_disk.New(disk.NewMemDisk(BENCHDISKSZ))
	if err := mkfs.Mkfs(td, mkfs.DEFAULTINFO); err != nil {
		log.Fatal(err)
	}
	fs := sfs.MkFs(td)
	defer fs.Shutdown()
	fds := fd.MkTable()

	start := time.Now()

	f, err := fs.Open(fds, "/largefile", sfs.READ|sfs.WRITE)
	if err != nil {
		log.Fatal(err)
	}
	n := FILESIZE / WSIZE
	for j := uint64(0); j < n; j++ {
		if _, err := fs.Write(fds, f, data); err != nil {
			log.Fatal(err)
		}
	}
	if err := fs.Close(fds, f); err != nil {
		log.Fatal(err)
	}
	attr, err := fs.Stat("/largefile")
	if err != nil || attr.Size != FILESIZE {
		panic("large")
	}

	t := time.Now()
	elapsed := t.Sub(start)
	tput := float64(FILESIZE/MB) / elapsed.Seconds()
	fmt.Printf("largefile: %v MB throughput %.2f MB/s\n", FILESIZE/MB, tput)

	if *dumpStats {
		fs.WriteStats(os.Stderr)
		td.WriteStats(os.Stderr)
	}
}
