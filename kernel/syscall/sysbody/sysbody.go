// Package sysbody implements the syscall bodies spec.md §4.5 and §6
// name, wired to kernel/vfs, kernel/thread, and kernel/clock. Each
// body registers itself with kernel/syscall's table from init(), the
// same registration shape kernel/vfs.RegisterType uses for VFS
// backends, applied to a dense numeric ABI instead of a string key.
package sysbody

import (
	"time"

	"matrixkernel.dev/kernel/kerr"
	sc "matrixkernel.dev/kernel/syscall"
	"matrixkernel.dev/kernel/vfs"
)

// Open flag bits. OpenCreate matches spec.md §6's "create-bit mask
// equal to 0x600".
const (
	OpenCreate = 0x600
)

// Seek whence values, per spec.md §6.
const (
	SeekSet = 0
	SeekCur = 1
	SeekEnd = 2
)

// Mode type bits for Stat.Mode, matching spec.md §6's
// "_IFREG/_IFDIR/_IFIFO/_IFCHR/_IFBLK/_IFLNK" constants (standard Unix
// values; original_source inherits them from its own libc headers).
const (
	modeIFIFO = 0o010000
	modeIFCHR = 0o020000
	modeIFDIR = 0o040000
	modeIFBLK = 0o060000
	modeIFREG = 0o100000
	modeIFLNK = 0o120000
)

func typeBit(t vfs.NodeType) uint32 {
	switch t {
	case vfs.File:
		return modeIFREG
	case vfs.Directory:
		return modeIFDIR
	case vfs.Pipe:
		return modeIFIFO
	case vfs.CharDevice:
		return modeIFCHR
	case vfs.BlockDevice:
		return modeIFBLK
	case vfs.Symlink:
		return modeIFLNK
	default:
		return 0
	}
}

// Stat is the fixed-layout structure spec.md §6 says lstat fills.
type Stat struct {
	Dev   uint64
	Ino   uint64
	Mode  uint32
	Nlink uint32
	UID   uint32
	GID   uint32
	Rdev  uint64
	Size  uint32
}

func init() {
	sc.Register(sc.Putstr, putstr)
	sc.Register(sc.Open, open)
	sc.Register(sc.Read, read)
	sc.Register(sc.Write, write)
	sc.Register(sc.Close, closeFD)
	sc.Register(sc.Exit, exit)
	sc.Register(sc.Gettimeofday, gettimeofday)
	sc.Register(sc.Settimeofday, settimeofday)
	sc.Register(sc.Readdir, readdir)
	sc.Register(sc.Lseek, lseek)
	sc.Register(sc.Lstat, lstat)
	sc.Register(sc.Chdir, chdir)
	sc.Register(sc.Mkdir, mkdir)
	sc.Register(sc.Gethostname, gethostname)
	sc.Register(sc.Sethostname, sethostname)
	sc.Register(sc.Getuid, getuid)
	sc.Register(sc.Setuid, setuid)
	sc.Register(sc.Getgid, getgid)
	sc.Register(sc.Setgid, setgid)
	sc.Register(sc.Getpid, getpid)
	sc.Register(sc.Sleep, sleep)
	sc.Register(sc.CreateProcess, createProcess)
	sc.Register(sc.Waitpid, waitpid)
	sc.Register(sc.UnitTest, unitTest)
	sc.Register(sc.Clear, clear_)
	sc.Register(sc.Shutdown, shutdown)
	sc.Register(sc.Syslog, syslog)
}

func putstr(t *sc.Task, regs *sc.Regs) int64 {
	s, _ := regs.EDI.(string)
	t.Console.Printf("%s", s)
	return int64(len(s))
}

func open(t *sc.Task, regs *sc.Regs) int64 {
	path, _ := regs.EDI.(string)
	flags, _ := regs.ESI.(int)

	node, err := t.VFS.Lookup(path, vfs.File)
	if err != nil && flags&OpenCreate != 0 {
		node, err = t.VFS.Create(path, vfs.File)
	}
	if err != nil {
		return int64(kerr.Negate(err))
	}
	return t.AllocFD(node)
}

func read(t *sc.Task, regs *sc.Regs) int64 {
	fd, _ := regs.EDI.(int64)
	buf, _ := regs.ESI.([]byte)
	size, _ := regs.EDX.(int)

	node, ok := t.FDs[fd]
	if !ok {
		return int64(kerr.Negate(kerr.ErrNotFound))
	}
	n, err := vfs.Read(node, node.Offset, uint32(size), buf)
	if err != nil {
		return int64(kerr.Negate(err))
	}
	node.Offset += uint32(n)
	return int64(n)
}

func write(t *sc.Task, regs *sc.Regs) int64 {
	fd, _ := regs.EDI.(int64)
	buf, _ := regs.ESI.([]byte)

	node, ok := t.FDs[fd]
	if !ok {
		return int64(kerr.Negate(kerr.ErrNotFound))
	}
	n, err := vfs.Write(node, node.Offset, buf)
	if err != nil {
		return int64(kerr.Negate(err))
	}
	node.Offset += uint32(n)
	return int64(n)
}

func closeFD(t *sc.Task, regs *sc.Regs) int64 {
	fd, _ := regs.EDI.(int64)
	node, ok := t.FDs[fd]
	if !ok {
		return int64(kerr.Negate(kerr.ErrNotFound))
	}
	delete(t.FDs, fd)
	if err := vfs.Close(node); err != nil {
		return int64(kerr.Negate(err))
	}
	return 0
}

func exit(t *sc.Task, regs *sc.Regs) int64 {
	t.Thread.Exit()
	return 0
}

func gettimeofday(t *sc.Task, regs *sc.Regs) int64 {
	out, _ := regs.EDI.(*int64)
	now, err := t.Clock.Now()
	if err != nil {
		return int64(kerr.Negate(err))
	}
	if out != nil {
		*out = now
	}
	return 0
}

func settimeofday(t *sc.Task, regs *sc.Regs) int64 {
	// original_source treats the RTC as read-only from the kernel's
	// perspective; settimeofday is accepted but has no collaborator to
	// actually reprogram CMOS registers through. Stub per spec.md §4.6.
	return int64(kerr.Negate(kerr.ErrNotSupported))
}

func readdir(t *sc.Task, regs *sc.Regs) int64 {
	fd, _ := regs.EDI.(int64)
	index, _ := regs.ESI.(int)
	out, _ := regs.EDX.(*vfs.Dirent)

	node, ok := t.FDs[fd]
	if !ok {
		return int64(kerr.Negate(kerr.ErrNotFound))
	}
	d, err := vfs.Readdir(node, index)
	if err != nil {
		return int64(kerr.Negate(err))
	}
	if out != nil {
		*out = *d
	}
	return 0
}

func lseek(t *sc.Task, regs *sc.Regs) int64 {
	fd, _ := regs.EDI.(int64)
	offset, _ := regs.ESI.(int64)
	whence, _ := regs.EDX.(int)

	node, ok := t.FDs[fd]
	if !ok {
		return int64(kerr.Negate(kerr.ErrNotFound))
	}

	var base int64
	switch whence {
	case SeekSet:
		base = 0
	case SeekCur:
		base = int64(node.Offset)
	case SeekEnd:
		base = int64(node.Length)
	default:
		return int64(kerr.Negate(kerr.ErrInval))
	}
	newOff := base + offset
	if newOff < 0 {
		return int64(kerr.Negate(kerr.ErrInval))
	}
	node.Offset = uint32(newOff)
	return newOff
}

func lstat(t *sc.Task, regs *sc.Regs) int64 {
	path, _ := regs.EDI.(string)
	out, _ := regs.ESI.(*Stat)

	node, err := t.VFS.Lookup(path, vfs.File)
	if err != nil {
		return int64(kerr.Negate(err))
	}
	if out != nil {
		*out = Stat{
			Ino:   node.Ino,
			Mode:  node.Mask | typeBit(node.Type),
			Nlink: 1,
			UID:   node.UID,
			GID:   node.GID,
			Size:  node.Length,
		}
	}
	return 0
}

func chdir(t *sc.Task, regs *sc.Regs) int64 {
	// original_source/kernel/sys/syscall.c's k_chdir is an empty stub;
	// no working-directory semantics are encoded anywhere in the
	// original. spec.md's own open questions list this as undecided
	// rather than a bug to fix — kept as a stub.
	return int64(kerr.Negate(kerr.ErrNotSupported))
}

func mkdir(t *sc.Task, regs *sc.Regs) int64 {
	path, _ := regs.EDI.(string)
	if _, err := t.VFS.Create(path, vfs.Directory); err != nil {
		return int64(kerr.Negate(err))
	}
	return 0
}

func gethostname(t *sc.Task, regs *sc.Regs) int64 {
	buf, _ := regs.EDI.([]byte)
	name := sc.GetHostname()
	n := copy(buf, name)
	return int64(n)
}

func sethostname(t *sc.Task, regs *sc.Regs) int64 {
	name, _ := regs.EDI.(string)
	sc.SetHostname(name)
	return 0
}

func getuid(t *sc.Task, regs *sc.Regs) int64 {
	return int64(t.Process.UID)
}

func setuid(t *sc.Task, regs *sc.Regs) int64 {
	uid, _ := regs.EDI.(uint32)
	t.Process.UID = uid
	return 0
}

func getgid(t *sc.Task, regs *sc.Regs) int64 {
	return int64(t.Process.GID)
}

func setgid(t *sc.Task, regs *sc.Regs) int64 {
	gid, _ := regs.EDI.(uint32)
	t.Process.GID = gid
	return 0
}

func getpid(t *sc.Task, regs *sc.Regs) int64 {
	return int64(t.Process.PID)
}

func sleep(t *sc.Task, regs *sc.Regs) int64 {
	us, _ := regs.EDI.(int64)
	return int64(t.Thread.Sleep(nil, nil, time.Duration(us)*time.Microsecond))
}

func createProcess(t *sc.Task, regs *sc.Regs) int64 {
	// fork/execve-shaped process creation has no encoded semantics in
	// original_source beyond the stub; spec.md §1 puts the process
	// table and address-space manager out of scope.
	return int64(kerr.Negate(kerr.ErrNotSupported))
}

func waitpid(t *sc.Task, regs *sc.Regs) int64 {
	return int64(kerr.Negate(kerr.ErrNotSupported))
}

// unitTestExpected is the fixed value original_source's unit_test
// syscall self-check compares against; kernel-side test harnesses
// invoke syscall 23 and expect this exact reply to confirm the
// dispatch path is wired end to end.
const unitTestExpected = 0xC0FFEE

func unitTest(t *sc.Task, regs *sc.Regs) int64 {
	t.Console.Printf("unit_test syscall invoked")
	return unitTestExpected
}

func clear_(t *sc.Task, regs *sc.Regs) int64 {
	t.Console.Clear()
	return 0
}

// ShutdownFunc is invoked by the shutdown syscall. It defaults to a
// log line rather than exiting the process, so the dispatcher remains
// safe to exercise from tests and from cmd/matrixkernel-boot's demo
// without tearing down the host.
var ShutdownFunc = func(t *sc.Task) {
	t.Console.Printf("shutdown requested")
}

func shutdown(t *sc.Task, regs *sc.Regs) int64 {
	ShutdownFunc(t)
	return 0
}

func syslog(t *sc.Task, regs *sc.Regs) int64 {
	msg, _ := regs.EDI.(string)
	t.Console.Printf("%s", msg)
	return int64(len(msg))
}
