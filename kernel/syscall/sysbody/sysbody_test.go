package sysbody_test

import (
	"testing"

	"matrixkernel.dev/kernel/clock"
	sc "matrixkernel.dev/kernel/syscall"
	_ "matrixkernel.dev/kernel/syscall/sysbody"
	"matrixkernel.dev/kernel/thread"
	"matrixkernel.dev/kernel/timer"
	"matrixkernel.dev/kernel/vfs"
	"matrixkernel.dev/kernel/vfs/ramfs"
)

type testConsole struct {
	lines []string
}

func (c *testConsole) Printf(format string, args ...any) {
	c.lines = append(c.lines, format)
}
func (c *testConsole) Clear() { c.lines = append(c.lines, "<clear>") }

func newTask(t *testing.T) (*sc.Task, *testConsole) {
	t.Helper()
	v := vfs.New()
	archive := ramfs.BuildArchive(map[string][]byte{"greeting": []byte("hello world")})
	if _, err := v.Mount(ramfs.TypeName, 0, archive); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	console := &testConsole{}
	th := thread.Create("task", nil, 0, func(any) {}, nil, noopScheduler{}, timer.System{})
	task := sc.NewTask(th, &sc.ProcessInfo{PID: 7}, v, clock.CMOSSource{Reader: clock.FakeCMOS{
		Year: 24, Month: 1, Day: 1, Binary: true,
	}}, console)
	return task, console
}

type noopScheduler struct{}

func (noopScheduler) InsertThread(*thread.Thread) {}
func (noopScheduler) PostSwitch(*thread.Thread)   {}

// TestGetpidMatchesProcess is spec.md scenario 5's shape: EAX=19
// (getpid) with current process id 7 returns EAX=7.
func TestGetpidMatchesProcess(t *testing.T) {
	task, _ := newTask(t)
	regs := &sc.Regs{EAX: sc.Getpid}
	sc.Dispatch(task, regs)
	if regs.EAX != 7 {
		t.Fatalf("EAX = %d, want 7", regs.EAX)
	}
}

func TestSetuidThenGetuidRoundTrips(t *testing.T) {
	task, _ := newTask(t)

	setRegs := &sc.Regs{EAX: sc.Setuid, EDI: uint32(42)}
	sc.Dispatch(task, setRegs)
	if setRegs.EAX != 0 {
		t.Fatalf("setuid EAX = %d, want 0", setRegs.EAX)
	}

	getRegs := &sc.Regs{EAX: sc.Getuid}
	sc.Dispatch(task, getRegs)
	if getRegs.EAX != 42 {
		t.Fatalf("getuid EAX = %d, want 42", getRegs.EAX)
	}
}

func TestSethostnameThenGethostnameRoundTrips(t *testing.T) {
	task, _ := newTask(t)

	setRegs := &sc.Regs{EAX: sc.Sethostname, EDI: "kernel-host"}
	sc.Dispatch(task, setRegs)

	buf := make([]byte, 256)
	getRegs := &sc.Regs{EAX: sc.Gethostname, EDI: buf}
	sc.Dispatch(task, getRegs)

	n := int(getRegs.EAX)
	if string(buf[:n]) != "kernel-host" {
		t.Fatalf("gethostname = %q, want kernel-host", string(buf[:n]))
	}
}

// TestOpenReadCloseFlow mounts a ramfs archive, opens a file by path,
// reads it through the fd table, and closes it — the syscall-level
// equivalent of ramfs's TestMountAndRead.
func TestOpenReadCloseFlow(t *testing.T) {
	task, _ := newTask(t)

	openRegs := &sc.Regs{EAX: sc.Open, EDI: "greeting", ESI: 0}
	sc.Dispatch(task, openRegs)
	if openRegs.EAX < 0 {
		t.Fatalf("open returned %d, want a non-negative fd", openRegs.EAX)
	}
	fd := openRegs.EAX

	buf := make([]byte, 32)
	readRegs := &sc.Regs{EAX: sc.Read, EDI: fd, ESI: buf, EDX: len(buf)}
	sc.Dispatch(task, readRegs)
	if readRegs.EAX != int64(len("hello world")) {
		t.Fatalf("read returned %d, want %d", readRegs.EAX, len("hello world"))
	}
	if string(buf[:readRegs.EAX]) != "hello world" {
		t.Fatalf("read buf = %q, want %q", string(buf[:readRegs.EAX]), "hello world")
	}

	closeRegs := &sc.Regs{EAX: sc.Close, EDI: fd}
	sc.Dispatch(task, closeRegs)
	if closeRegs.EAX != 0 {
		t.Fatalf("close returned %d, want 0", closeRegs.EAX)
	}

	readAgain := &sc.Regs{EAX: sc.Read, EDI: fd, ESI: buf, EDX: len(buf)}
	sc.Dispatch(task, readAgain)
	if readAgain.EAX >= 0 {
		t.Fatalf("read after close returned %d, want negative", readAgain.EAX)
	}
}

func TestUnitTestSyscall(t *testing.T) {
	task, console := newTask(t)
	regs := &sc.Regs{EAX: sc.UnitTest}
	sc.Dispatch(task, regs)
	if regs.EAX != 0xC0FFEE {
		t.Fatalf("unit_test returned %#x, want 0xC0FFEE", regs.EAX)
	}
	if len(console.lines) == 0 {
		t.Fatal("unit_test should log through the console sink")
	}
}

func TestStubbedSyscallsReturnNotSupported(t *testing.T) {
	task, _ := newTask(t)
	for _, nr := range []int64{sc.Chdir, sc.CreateProcess, sc.Waitpid, sc.Settimeofday} {
		regs := &sc.Regs{EAX: nr}
		sc.Dispatch(task, regs)
		if regs.EAX >= 0 {
			t.Fatalf("syscall %d returned %d, want negative (NOT_SUPPORTED)", nr, regs.EAX)
		}
	}
}
