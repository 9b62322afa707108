package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-sfs/fd"
	"github.com/mit-pdos/go-sfs/mkfs"
	"github.com/mit-pdos/go-sfs/sfs"
)

const BENCHDISKSZ uint64 = 32 * 1000

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

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
	SmallFiles()
}

// SmallFile creates name under dir, writes data and reads it back.
func SmallFile(fs *sfs.Fs, fds *fd.Table, dir string, name string, data []byte) {
	path := dir + "/" + name
	if _, err := fs.Stat(path); err != sfs.ErrNotFound {
		panic("SmallFile")
	}
	f, err := fs.Open(fds, path, sfs.READ|sfs.WRITE)
	if err != nil {
		panic(err)
	}
	if _, err := fs.Write(fds, f, data); err != nil {
		panic(err)
	}
	if _, err := fs.Seek(fds, f, 0, sfs.SEEK_SET); err != nil {
		panic(err)
	}
	buf := make([]byte, len(data))
	if n, err := fs.Read(fds, f, buf); err != nil || n != len(data) {
		panic("SmallFile")
	}
	if err := fs.Close(fds, f); err != nil {
		panic(err)
	}
}

func mkdata(sz uint64) []byte {
	data := make([]byte, sz)
	for i := range data {
		data[i] = byte(i % 128)
	}
	return data
}

// SmallFiles creates 100-byte files until the image fills up or N
// microseconds pass. Each file costs three blocks, and there is no
// unlink to reclaim them.
func SmallFiles() {
	const N = 1000 * 1000 * 10
	d := disk.NewMemDisk(BENCHDISKSZ)
	if err := mkfs.Mkfs(d, mkfs.DEFAULTINFO); err != nil {
		log.Fatal(err)
	}
	fs := sfs.MkFs(d)
	defer fs.Shutdown()
	fds := fd.MkTable()

	data := mkdata(uint64(100))
	limit := (BENCHDISKSZ - mkfs.NRESERVED) / 4
	start := time.Now()
	i := 0
	for uint64(i) < limit {
		s := strconv.Itoa(i)
		SmallFile(fs, fds, "/bench", "x"+s, data)
		i++
		elapsed := time.Now().Sub(start)
		if elapsed.Microseconds() >= N {
			break
		}
	}
	elapsed := time.Now().Sub(start)
	fmt.Printf("smallfile: %v file/s (%d files)\n", float64(i)/elapsed.Seconds(), i)
}
