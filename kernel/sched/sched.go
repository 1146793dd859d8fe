// Package sched provides a minimal reference implementation of the
// ready-queue collaborator kernel/thread depends on through the
// thread.Scheduler interface. spec.md treats insert_thread,
// reschedule, and post_switch as external to the thread-lifecycle
// core; this package is the single-core cooperative round-robin that
// satisfies that contract, grounded the way perkeep's
// pkg/blobserver registry keeps storage state behind a mutex-guarded
// struct rather than package-level globals.
package sched

import (
	"sync"

	"matrixkernel.dev/internal/ilist"
	"matrixkernel.dev/kernel/thread"
)

// Scheduler is a single-core ready queue: an intrusive ring of the
// threads eligible to run, in FIFO order. It does not itself run
// goroutines — the Go runtime already schedules those — it only
// tracks the bookkeeping spec.md's invariants describe (run-queue
// membership, insertion order) so that it can be asserted on in
// tests.
type Scheduler struct {
	mu        sync.Mutex
	readyHead ilist.Node
	owners    map[*ilist.Node]*thread.Thread
	initOnce  sync.Once
}

// New returns an empty Scheduler.
func New() *Scheduler {
	s := &Scheduler{owners: make(map[*ilist.Node]*thread.Thread)}
	s.readyHead.Init()
	return s
}

// InsertThread adds t to the tail of the ready queue, unless it is
// already queued (PostSwitch has not yet removed it — spec.md's
// insert_thread is idempotent against a thread that never left the
// run queue between two scheduling decisions).
func (s *Scheduler) InsertThread(t *thread.Thread) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link := t.RunQueueLink()
	if !link.Empty() {
		return
	}
	ilist.AddTail(link, &s.readyHead)
	s.owners[link] = t
}

// PostSwitch removes t from the ready queue: it is no longer waiting
// to be picked, it is now the running thread.
func (s *Scheduler) PostSwitch(t *thread.Thread) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link := t.RunQueueLink()
	ilist.Remove(link)
	delete(s.owners, link)
}

// Next pops the thread at the head of the ready queue, or nil if the
// queue is empty. It is the Go analog of original_source's
// scheduler_reschedule picking the next runnable thread; kernel/thread
// itself never calls it — only a driver (cmd/matrixkernel-boot, or a
// test) that wants to observe scheduling order does.
func (s *Scheduler) Next() *thread.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()

	head := s.readyHead.Next()
	if head == nil {
		return nil
	}
	t := s.owners[head]
	ilist.Remove(head)
	delete(s.owners, head)
	return t
}

// Len reports the number of threads currently on the ready queue.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.owners)
}
