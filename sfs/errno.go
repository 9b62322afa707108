package sfs

import (
	"github.com/mit-pdos/go-sfs/layout"
)

type Errno = layout.Errno

const (
	ErrInvalidPath      = layout.ErrInvalidPath
	ErrNotFound         = layout.ErrNotFound
	ErrTooManyOpenFiles = layout.ErrTooManyOpenFiles
	ErrIsDir            = layout.ErrIsDir
	ErrFlagMismatch     = layout.ErrFlagMismatch
	ErrOffsetOutOfRange = layout.ErrOffsetOutOfRange
	ErrBadFd            = layout.ErrBadFd
	ErrInvalid          = layout.ErrInvalid
	ErrNotDir           = layout.ErrNotDir
	ErrNameTooLong      = layout.ErrNameTooLong
	ErrNoSpace          = layout.ErrNoSpace
	ErrBadMagic         = layout.ErrBadMagic
)

const (
	READ  = layout.READ
	WRITE = layout.WRITE

	SEEK_CUR = layout.SEEK_CUR
	SEEK_SET = layout.SEEK_SET
	SEEK_END = layout.SEEK_END
)

// Ret folds a result and an error into the single status word a
// system call returns: n on success, a negative code otherwise. A call
// that failed after moving n > 0 bytes, such as a write cut short by
// ErrNoSpace, returns n.
func Ret(n int, err error) int32 {
	if err == nil || n > 0 {
		return int32(n)
	}
	if e, ok := err.(Errno); ok {
		return int32(e)
	}
	return int32(ErrInvalid)
}
