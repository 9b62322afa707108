package layout

// Errno is a negative status code; every SFS operation that fails
// reports one of these.
type Errno int32

const (
	ErrInvalidPath      Errno = -1
	ErrNotFound         Errno = -2
	ErrTooManyOpenFiles Errno = -3
	ErrIsDir            Errno = -4
	ErrFlagMismatch     Errno = -5
	ErrOffsetOutOfRange Errno = -6
	ErrBadFd            Errno = -7
	ErrInvalid          Errno = -8
	ErrNotDir           Errno = -9
	ErrNameTooLong      Errno = -10
	ErrNoSpace          Errno = -11
	ErrBadMagic         Errno = -12
)

var errnoNames = map[Errno]string{
	ErrInvalidPath:      "invalid path",
	ErrNotFound:         "no such file or directory",
	ErrTooManyOpenFiles: "too many open files",
	ErrIsDir:            "is a directory",
	ErrFlagMismatch:     "operation not permitted by open flags",
	ErrOffsetOutOfRange: "offset out of range",
	ErrBadFd:            "bad file descriptor",
	ErrInvalid:          "invalid argument",
	ErrNotDir:           "not a directory",
	ErrNameTooLong:      "file name too long",
	ErrNoSpace:          "no space left on device",
	ErrBadMagic:         "bad superblock magic",
}

func (e Errno) Error() string {
	if s, ok := errnoNames[e]; ok {
		return "sfs: " + s
	}
	return "sfs: unknown error"
}
