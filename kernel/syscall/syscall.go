// Package syscall implements the kernel's syscall dispatch layer from
// spec.md §4.5: a stable, append-only numbered table bridging
// user-mode callers to kernel services via a single entry point.
//
// original_source/kernel/sys/syscall.c dispatches through interrupt
// 0x80, reading the syscall number from the accumulator register and
// pushing five argument-register values onto the callee's stack. A
// hosted Go program has neither a real interrupt vector nor a flat
// address space for those argument registers to point into, so this
// port keeps the five-slot argument shape (spec.md §9's "push-all-
// five-args... calling-convention hack") but types each slot as `any`
// instead of a raw integer — the "stronger implementation defines each
// syscall with a typed signature" design note, applied without
// abandoning the fixed five-register shape the ABI names.
package syscall

import (
	"log"
	"sync"

	"matrixkernel.dev/kernel/clock"
	"matrixkernel.dev/kernel/thread"
	"matrixkernel.dev/kernel/vfs"
)

// Syscall numbers, stable per spec.md §6 ("additions must append,
// never reorder").
const (
	Putstr        = 0
	Open          = 1
	Read          = 2
	Write         = 3
	Close         = 4
	Exit          = 5
	Gettimeofday  = 6
	Settimeofday  = 7
	Readdir       = 8
	Lseek         = 9
	Lstat         = 10
	Chdir         = 11
	Mkdir         = 12
	Gethostname   = 13
	Sethostname   = 14
	Getuid        = 15
	Setuid        = 16
	Getgid        = 17
	Setgid        = 18
	Getpid        = 19
	Sleep         = 20
	CreateProcess = 21
	Waitpid       = 22
	UnitTest      = 23
	Clear         = 24
	Shutdown      = 25
	Syslog        = 26

	// NrSyscalls is one past the highest valid syscall number.
	NrSyscalls = 27
)

// Regs is the syscall register file the dispatcher reads and writes,
// per spec.md §4.5/§6. EAX carries the syscall number in and the
// return value out; EDI/ESI/EDX/ECX/EBX are the five argument slots
// in the push order spec.md §4.5 describes. A body consumes only the
// prefix of slots it declares; the rest are simply ignored, the Go
// analog of the caller's stack cleanup discarding unused pushes.
type Regs struct {
	EAX int64

	EDI any
	ESI any
	EDX any
	ECX any
	EBX any
}

// Console is the external log-sink collaborator spec.md §1 names
// ("the console/log sink"). syslog and clear write through it.
type Console interface {
	Printf(format string, args ...any)
	Clear()
}

// StdConsole is a Console backed by the standard log package, matching
// the ambient stack's per-subsystem prefixed logger convention.
type StdConsole struct {
	*log.Logger
}

func (c StdConsole) Printf(format string, args ...any) { c.Logger.Printf(format, args...) }
func (c StdConsole) Clear()                            { c.Logger.Print("-- clear --") }

// ProcessInfo is the syscall layer's view of a process: identity bits
// (spec.md's getuid/setuid/getgid/setgid/getpid family). The host name
// is not stored here; it is one package-wide value (see maxHostname
// below). ProcessInfo is deliberately distinct from
// thread.Process, which only tracks what the thread lifecycle core
// needs (owner identity and kernel/user-ness); spec.md treats the
// process table itself as an external collaborator this package only
// borrows a thin slice of.
type ProcessInfo struct {
	PID uint64
	UID uint32
	GID uint32
}

// maxHostname bounds the shared host name buffer (spec.md §6: "up to
// 256 bytes; default Matrix"). It is process-table-wide rather than
// per-process: "multi-process races are benign (last writer wins)"
// per spec.md §5, so one guarded global stands in for the external
// process table's shared buffer.
const maxHostname = 256

var hostname = struct {
	mu    sync.Mutex
	value string
}{value: "Matrix"}

// GetHostname returns the kernel's current host name.
func GetHostname() string {
	hostname.mu.Lock()
	defer hostname.mu.Unlock()
	return hostname.value
}

// SetHostname replaces the kernel's host name, truncated to
// maxHostname bytes per spec.md §6.
func SetHostname(s string) {
	if len(s) > maxHostname {
		s = s[:maxHostname]
	}
	hostname.mu.Lock()
	hostname.value = s
	hostname.mu.Unlock()
}

// Task is everything a syscall body needs about "the current thread
// and process" — the per-goroutine state design notes §9 calls for
// ("model as thread-local / per-CPU state with an explicit init/
// teardown lifecycle. Do not make it global mutable."). Dispatch
// never reaches for a global; every body receives its Task explicitly.
type Task struct {
	Thread  *thread.Thread
	Process *ProcessInfo

	VFS     *vfs.VFS
	Clock   clock.Source
	Console Console

	FDs    map[int64]*vfs.Node
	nextFD int64
}

// NewTask constructs a Task with an empty descriptor table.
func NewTask(th *thread.Thread, proc *ProcessInfo, v *vfs.VFS, clk clock.Source, console Console) *Task {
	return &Task{
		Thread:  th,
		Process: proc,
		VFS:     v,
		Clock:   clk,
		Console: console,
		FDs:     make(map[int64]*vfs.Node),
	}
}

// AllocFD installs n in the task's descriptor table and returns its
// new file descriptor.
func (t *Task) AllocFD(n *vfs.Node) int64 {
	fd := t.nextFD
	t.nextFD++
	t.FDs[fd] = n
	return fd
}

// Body is a syscall implementation: it receives the calling task and
// the register file, and returns the value to write into EAX — a
// negative kerr.Negate value on failure, a non-negative count or
// handle on success.
type Body func(t *Task, regs *Regs) int64

var table [NrSyscalls]Body

// Register installs fn as the implementation of syscall number nr.
// sysbody calls this from its init(), the same name-to-constructor
// registration shape kernel/vfs.RegisterType uses, applied to a dense
// numeric table instead of a string-keyed map since spec.md's ABI is
// numeric and append-only.
func Register(nr int, fn Body) {
	table[nr] = fn
}

// Dispatch is the syscall entry point, spec.md §4.5's
// interrupt-0x80 handler: read the number from EAX, invoke the
// matching body, write its return value back to EAX. A number outside
// [0, NrSyscalls) — or one with no body registered — leaves EAX
// untouched and logs, per spec.md's open question, resolved against
// original_source/kernel/sys/syscall.c's literal behavior (see
// DESIGN.md).
func Dispatch(t *Task, regs *Regs) {
	nr := regs.EAX
	if nr < 0 || nr >= NrSyscalls || table[nr] == nil {
		log.Printf("kernel/syscall: out-of-range syscall number %d", nr)
		return
	}
	regs.EAX = table[nr](t, regs)
}
