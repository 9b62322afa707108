package dir

import (
	"github.com/mit-pdos/go-journal/common"
	"github.com/mit-pdos/go-journal/util"

	"github.com/mit-pdos/go-sfs/extent"
	"github.com/mit-pdos/go-sfs/fsstate"
	"github.com/mit-pdos/go-sfs/layout"
)

// A directory is an inode whose blocks are directory entries, one per
// block, in insertion order. The first two are "." and "..".

// LookupName scans dip's entries for an exact match on name.
func LookupName(st *fsstate.FsState, dip common.Inum, name string) common.Inum {
	if !st.Inode(dip).IsDir() {
		return common.NULLINUM
	}
	var inum = common.NULLINUM
	extent.Walk(st, dip, func(_ common.Bnum, _ uint64, bn common.Bnum) bool {
		de := st.DirEnt(bn)
		if de.Name == name {
			inum = de.Inum
			return false
		}
		return true
	})
	util.DPrintf(5, "LookupName # %v: %v -> %v\n", dip, name, inum)
	return inum
}

// AddName appends a new entry for (name, inum) to dip.
func AddName(st *fsstate.FsState, dip common.Inum, inum common.Inum, name string) bool {
	bn := st.CreateDirEnt(name, inum)
	if bn == common.NULLBNUM {
		return false
	}
	util.DPrintf(5, "AddName # %v: %v %v blk %d\n", dip, name, inum, bn)
	return extent.Append(st, dip, bn)
}

// Names returns every entry name of dip in traversal order.
func Names(st *fsstate.FsState, dip common.Inum) []string {
	names := make([]string, 0)
	extent.Walk(st, dip, func(_ common.Bnum, _ uint64, bn common.Bnum) bool {
		names = append(names, st.DirEnt(bn).Name)
		return true
	})
	return names
}

// MkDir creates an empty directory holding "." and "..", and links
// it into parent under name.
func MkDir(st *fsstate.FsState, parent common.Inum, name string) (common.Inum, error) {
	ino := st.CreateInode(layout.DIR)
	if ino == common.NULLBNUM {
		return common.NULLINUM, layout.ErrNoSpace
	}
	ent := st.CreateDirEnt(name, ino)
	if ent == common.NULLBNUM {
		return common.NULLINUM, layout.ErrNoSpace
	}
	dot := st.CreateDirEnt(".", ino)
	if dot == common.NULLBNUM {
		return common.NULLINUM, layout.ErrNoSpace
	}
	dotdot := st.CreateDirEnt("..", parent)
	if dotdot == common.NULLBNUM {
		return common.NULLINUM, layout.ErrNoSpace
	}
	st.ModifyInode(ino, func(ip *layout.Inode) {
		ip.Direct[0] = dot
		ip.Direct[1] = dotdot
		ip.Blocks = 2
	})
	if !extent.Append(st, parent, ent) {
		return common.NULLINUM, layout.ErrNoSpace
	}
	util.DPrintf(1, "MkDir %v/%v -> %v\n", parent, name, ino)
	return ino, nil
}

// MkFile creates an empty file with one data block and links it into
// parent under name.
func MkFile(st *fsstate.FsState, parent common.Inum, name string) (common.Inum, error) {
	ino := st.CreateInode(layout.FILE)
	if ino == common.NULLBNUM {
		return common.NULLINUM, layout.ErrNoSpace
	}
	ent := st.CreateDirEnt(name, ino)
	if ent == common.NULLBNUM {
		return common.NULLINUM, layout.ErrNoSpace
	}
	data := st.CreateData()
	if data == common.NULLBNUM {
		return common.NULLINUM, layout.ErrNoSpace
	}
	st.ModifyInode(ino, func(ip *layout.Inode) {
		ip.Direct[0] = data
		ip.Blocks = 1
	})
	if !extent.Append(st, parent, ent) {
		return common.NULLINUM, layout.ErrNoSpace
	}
	util.DPrintf(1, "MkFile %v/%v -> %v\n", parent, name, ino)
	return ino, nil
}
