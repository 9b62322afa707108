// Package extent maps a file's logical block indices onto its chain of
// inodes. The head inode and every chained extension carry NDIRECT
// inline block numbers; index n lives in the (n / NDIRECT)'th link of the
// chain, at slot n % NDIRECT.
package extent

import (
	"github.com/mit-pdos/go-journal/common"
	"github.com/mit-pdos/go-journal/util"

	"github.com/mit-pdos/go-sfs/fsstate"
	"github.com/mit-pdos/go-sfs/layout"
)

// BlockAt returns the chain link holding logical index n and the slot
// within its inline table. Returns NULLBNUM if the chain ends first.
func BlockAt(st *fsstate.FsState, ino common.Bnum, n uint64) (common.Bnum, uint64) {
	var link = ino
	var off = n
	for off >= layout.NDIRECT {
		next := st.Inode(link).Indirect
		if next == common.NULLBNUM {
			return common.NULLBNUM, 0
		}
		off -= layout.NDIRECT
		link = next
	}
	return link, off
}

// Bmap returns the block number at logical index n, or NULLBNUM if the
// file has no such block.
func Bmap(st *fsstate.FsState, ino common.Bnum, n uint64) common.Bnum {
	link, slot := BlockAt(st, ino, n)
	if link == common.NULLBNUM {
		return common.NULLBNUM
	}
	ip := st.Inode(link)
	if slot >= uint64(ip.Blocks) {
		return common.NULLBNUM
	}
	return ip.Direct[slot]
}

func tail(st *fsstate.FsState, ino common.Bnum) common.Bnum {
	var link = ino
	for {
		next := st.Inode(link).Indirect
		if next == common.NULLBNUM {
			return link
		}
		link = next
	}
}

// Append records bn as the next block of ino. If the tail's inline
// table is full, a new extension inode of the owner's kind is chained
// after it. Returns false if no block is left for the extension.
func Append(st *fsstate.FsState, ino common.Bnum, bn common.Bnum) bool {
	t := tail(st, ino)
	ip := st.Inode(t)
	if !ip.Full() {
		st.ModifyInode(t, func(ip *layout.Inode) {
			ip.Direct[ip.Blocks] = bn
			ip.Blocks++
		})
		return true
	}
	kind := ip.Kind
	ext := st.CreateInode(kind)
	if ext == common.NULLBNUM {
		return false
	}
	util.DPrintf(1, "Append: %d chain %d -> %d\n", ino, t, ext)
	st.ModifyInode(t, func(ip *layout.Inode) {
		ip.Indirect = ext
	})
	st.ModifyInode(ext, func(ip *layout.Inode) {
		ip.Direct[0] = bn
		ip.Blocks = 1
	})
	return true
}

// Walk calls f on every block of ino in logical order, with the chain
// link and slot that hold it, until f returns false.
func Walk(st *fsstate.FsState, ino common.Bnum, f func(link common.Bnum, slot uint64, bn common.Bnum) bool) {
	var link = ino
	for link != common.NULLBNUM {
		ip := st.Inode(link)
		// copy out: f may fetch blocks that evict this inode
		direct := ip.Direct
		n := uint64(ip.Blocks)
		next := ip.Indirect
		for i := uint64(0); i < n; i++ {
			if !f(link, i, direct[i]) {
				return
			}
		}
		link = next
	}
}

// Links returns the extension inodes chained after ino, in order.
func Links(st *fsstate.FsState, ino common.Bnum) []common.Bnum {
	var links []common.Bnum
	var next = st.Inode(ino).Indirect
	for next != common.NULLBNUM {
		links = append(links, next)
		next = st.Inode(next).Indirect
	}
	return links
}

func NBlocks(st *fsstate.FsState, ino common.Bnum) uint64 {
	var n uint64
	var link = ino
	for link != common.NULLBNUM {
		ip := st.Inode(link)
		n += uint64(ip.Blocks)
		link = ip.Indirect
	}
	return n
}
