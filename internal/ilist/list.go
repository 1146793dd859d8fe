// Package ilist implements an intrusive doubly-linked ring, the
// embeddable list node used throughout the kernel for run queues,
// wait queues, and owner lists without any auxiliary allocation.
//
// A Node is always either empty (self-linked) or a member of exactly
// one ring. Ownership of the struct the Node is embedded in is
// entirely external to this package; the list only models membership.
package ilist

// Node is a pair of forward/back links meant to be embedded into a
// larger struct. The zero value is not ready for use; call Init first.
type Node struct {
	prev *Node
	next *Node
}

// Init makes n an empty, self-linked ring head (or standalone node).
func (n *Node) Init() {
	n.prev = n
	n.next = n
}

// Empty reports whether n is self-linked (not part of any ring, or a
// ring head with no members).
func (n *Node) Empty() bool {
	return n.prev == n && n.next == n
}

// AddHead inserts n immediately after head, making n the new first
// element of the ring rooted at head.
func AddHead(n, head *Node) {
	insertBetween(n, head, head.next)
}

// AddTail inserts n immediately before head, making n the new last
// element of the ring rooted at head.
func AddTail(n, head *Node) {
	insertBetween(n, head.prev, head)
}

func insertBetween(n, prev, next *Node) {
	next.prev = n
	prev.next = n
	n.next = next
	n.prev = prev
}

// Remove detaches n from whatever ring it is part of and
// re-initializes it to the empty state, so a second Remove on the
// same node is a well-defined no-op.
func Remove(n *Node) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.Init()
}

// Next returns the node following n in its ring, or nil if n is the
// head and the ring (excluding the head) is empty.
func (n *Node) Next() *Node {
	if n.next == n {
		return nil
	}
	return n.next
}

// Prev returns the node preceding n in its ring, or nil if n is the
// head and the ring (excluding the head) is empty.
func (n *Node) Prev() *Node {
	if n.prev == n {
		return nil
	}
	return n.prev
}

// Each calls fn for every node in the ring rooted at head, excluding
// head itself, in head-to-tail order. fn must not mutate the ring.
func Each(head *Node, fn func(*Node)) {
	for n := head.next; n != head; n = n.next {
		fn(n)
	}
}
