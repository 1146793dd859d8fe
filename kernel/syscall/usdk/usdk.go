// Package usdk is the user-space SDK stub layer spec.md §1 names as
// an external collaborator ("the user-space SDK that wraps syscall
// stubs"), supplementing original_source/sdk/syscalls.c: one thin
// wrapper function per syscall number, each building a Regs value and
// calling the dispatcher — the Go-hosted analog of sdk/syscalls.c's
// inline-asm `int 0x80` trampoline, minus the assembly, since this
// "user space" is just another goroutine calling straight into
// kernel/syscall rather than crossing a real privilege boundary.
package usdk

import (
	sc "matrixkernel.dev/kernel/syscall"
	"matrixkernel.dev/kernel/syscall/sysbody"
	"matrixkernel.dev/kernel/vfs"
)

// Client binds the stub functions below to a specific Task, the way
// original "user" code is linked against one running process's state.
type Client struct {
	Task *sc.Task
}

func New(task *sc.Task) *Client { return &Client{Task: task} }

func (c *Client) dispatch(regs *sc.Regs) int64 {
	sc.Dispatch(c.Task, regs)
	return regs.EAX
}

func (c *Client) Putstr(s string) int64 {
	return c.dispatch(&sc.Regs{EAX: sc.Putstr, EDI: s})
}

func (c *Client) Open(path string, flags int) int64 {
	return c.dispatch(&sc.Regs{EAX: sc.Open, EDI: path, ESI: flags})
}

func (c *Client) Read(fd int64, buf []byte) int64 {
	return c.dispatch(&sc.Regs{EAX: sc.Read, EDI: fd, ESI: buf, EDX: len(buf)})
}

func (c *Client) Write(fd int64, buf []byte) int64 {
	return c.dispatch(&sc.Regs{EAX: sc.Write, EDI: fd, ESI: buf})
}

func (c *Client) Close(fd int64) int64 {
	return c.dispatch(&sc.Regs{EAX: sc.Close, EDI: fd})
}

func (c *Client) Exit() int64 {
	return c.dispatch(&sc.Regs{EAX: sc.Exit})
}

func (c *Client) Gettimeofday() (int64, int64) {
	var out int64
	rc := c.dispatch(&sc.Regs{EAX: sc.Gettimeofday, EDI: &out})
	return rc, out
}

func (c *Client) Settimeofday(unixMicros int64) int64 {
	return c.dispatch(&sc.Regs{EAX: sc.Settimeofday, EDI: unixMicros})
}

func (c *Client) Readdir(fd int64, index int) (int64, vfs.Dirent) {
	var out vfs.Dirent
	rc := c.dispatch(&sc.Regs{EAX: sc.Readdir, EDI: fd, ESI: index, EDX: &out})
	return rc, out
}

func (c *Client) Lseek(fd int64, offset int64, whence int) int64 {
	return c.dispatch(&sc.Regs{EAX: sc.Lseek, EDI: fd, ESI: offset, EDX: whence})
}

func (c *Client) Lstat(path string) (int64, sysbody.Stat) {
	var out sysbody.Stat
	rc := c.dispatch(&sc.Regs{EAX: sc.Lstat, EDI: path, ESI: &out})
	return rc, out
}

func (c *Client) Chdir(path string) int64 {
	return c.dispatch(&sc.Regs{EAX: sc.Chdir, EDI: path})
}

func (c *Client) Mkdir(path string) int64 {
	return c.dispatch(&sc.Regs{EAX: sc.Mkdir, EDI: path})
}

func (c *Client) Gethostname(buf []byte) int64 {
	return c.dispatch(&sc.Regs{EAX: sc.Gethostname, EDI: buf})
}

func (c *Client) Sethostname(name string) int64 {
	return c.dispatch(&sc.Regs{EAX: sc.Sethostname, EDI: name})
}

func (c *Client) Getuid() int64 { return c.dispatch(&sc.Regs{EAX: sc.Getuid}) }

func (c *Client) Setuid(uid uint32) int64 {
	return c.dispatch(&sc.Regs{EAX: sc.Setuid, EDI: uid})
}

func (c *Client) Getgid() int64 { return c.dispatch(&sc.Regs{EAX: sc.Getgid}) }

func (c *Client) Setgid(gid uint32) int64 {
	return c.dispatch(&sc.Regs{EAX: sc.Setgid, EDI: gid})
}

func (c *Client) Getpid() int64 { return c.dispatch(&sc.Regs{EAX: sc.Getpid}) }

func (c *Client) Sleep(microseconds int64) int64 {
	return c.dispatch(&sc.Regs{EAX: sc.Sleep, EDI: microseconds})
}

func (c *Client) CreateProcess() int64 {
	return c.dispatch(&sc.Regs{EAX: sc.CreateProcess})
}

func (c *Client) Waitpid(pid int64) int64 {
	return c.dispatch(&sc.Regs{EAX: sc.Waitpid, EDI: pid})
}

func (c *Client) UnitTest() int64 {
	return c.dispatch(&sc.Regs{EAX: sc.UnitTest})
}

func (c *Client) Clear() int64 {
	return c.dispatch(&sc.Regs{EAX: sc.Clear})
}

func (c *Client) Shutdown() int64 {
	return c.dispatch(&sc.Regs{EAX: sc.Shutdown})
}

func (c *Client) Syslog(msg string) int64 {
	return c.dispatch(&sc.Regs{EAX: sc.Syslog, EDI: msg})
}
