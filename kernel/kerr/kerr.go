// Package kerr defines the kernel's error kinds as comparable
// sentinel values, and the negative-integer ABI convention that
// syscall bodies translate them to.
package kerr

import "errors"

// The eight error kinds from the propagation policy. Backends wrap
// them with context via fmt.Errorf("...: %w", ...); callers compare
// with errors.Is, and Negate sees through the wrapping, since the
// syscall ABI collapses every kind down to one negative int anyway
// (spec.md: "errno-style detail is not provided by this core").
var (
	ErrInval        = errors.New("invalid argument")
	ErrNotFound     = errors.New("not found")
	ErrNotSupported = errors.New("not supported")
	ErrNoMem        = errors.New("out of memory")
	ErrCapacity     = errors.New("capacity exceeded")
	ErrTimeout      = errors.New("timed out")
	ErrInterrupted  = errors.New("interrupted")
	ErrDuplicate    = errors.New("duplicate")
)

// negErrno assigns each kind a stable negative return value for the
// syscall ABI. Values are internal to this kernel; they are not the
// POSIX errno numbering.
var negErrno = map[error]int32{
	ErrInval:        -1,
	ErrNotFound:     -2,
	ErrNotSupported: -3,
	ErrNoMem:        -4,
	ErrCapacity:     -5,
	ErrTimeout:      -6,
	ErrInterrupted:  -7,
	ErrDuplicate:    -8,
}

// Negate converts a kernel error into the negative int32 a syscall
// body returns to the dispatcher. A nil error negates to 0. An
// unrecognized error (one of the collaborators' own errors, not one
// of the sentinels above) negates to a generic -1.
func Negate(err error) int32 {
	if err == nil {
		return 0
	}
	for sentinel, n := range negErrno {
		if errors.Is(err, sentinel) {
			return n
		}
	}
	return -1
}
