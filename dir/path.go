package dir

import (
	"strings"

	"github.com/mit-pdos/go-journal/common"
	"github.com/mit-pdos/go-journal/util"

	"github.com/mit-pdos/go-sfs/fsstate"
	"github.com/mit-pdos/go-sfs/layout"
)

// split breaks an absolute path into its non-empty components. dirOnly
// is set when the path ends in "/", in which case the last component
// names a directory.
func split(path string) (names []string, dirOnly bool, err error) {
	if !strings.HasPrefix(path, "/") {
		return nil, false, layout.ErrInvalidPath
	}
	for _, name := range strings.Split(path[1:], "/") {
		if name == "" {
			continue
		}
		if layout.IllegalName(name) {
			return nil, false, layout.ErrNameTooLong
		}
		names = append(names, name)
	}
	return names, strings.HasSuffix(path, "/"), nil
}

// Resolve walks path from the root and returns the inode it names. With
// create, missing intermediate components become directories and a
// missing final component becomes an empty file.
func Resolve(st *fsstate.FsState, path string, create bool) (common.Inum, error) {
	names, dirOnly, err := split(path)
	if err != nil {
		return common.NULLINUM, err
	}
	var cur = common.ROOTINUM
	for i, name := range names {
		if !st.Inode(cur).IsDir() {
			return common.NULLINUM, layout.ErrNotDir
		}
		inum := LookupName(st, cur, name)
		if inum == common.NULLINUM {
			if !create {
				return common.NULLINUM, layout.ErrNotFound
			}
			if i == len(names)-1 && !dirOnly {
				inum, err = MkFile(st, cur, name)
			} else {
				inum, err = MkDir(st, cur, name)
			}
			if err != nil {
				return common.NULLINUM, err
			}
		}
		cur = inum
	}
	if dirOnly && !st.Inode(cur).IsDir() {
		return common.NULLINUM, layout.ErrNotDir
	}
	util.DPrintf(1, "Resolve %v create %v -> %v\n", path, create, cur)
	return cur, nil
}

// List returns the entry names of the directory at path, or nothing if
// path names a file.
func List(st *fsstate.FsState, path string) ([]string, error) {
	inum, err := Resolve(st, path, false)
	if err != nil {
		return nil, err
	}
	if !st.Inode(inum).IsDir() {
		return []string{}, nil
	}
	return Names(st, inum), nil
}
