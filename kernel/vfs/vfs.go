// Package vfs implements the kernel's virtual file system core: a
// node/mount/type registry plus the thin read/write/readdir/create
// wrappers that dispatch through a node's operations table, per
// spec.md §4.2.
package vfs

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"matrixkernel.dev/kernel/kerr"
)

// VFS is the mount namespace: currently a single root mount, since
// spec.md's external collaborator contract (vfs_lookup/vfs_create)
// only ever demonstrates a single ramdisk mounted at the root. The
// struct holds just that one root mount; multiple mount points
// shadowing subtrees are not supported, and nothing in spec.md's
// scenarios exercises them.
type VFS struct {
	mu   sync.Mutex
	root *Mount
}

// New returns an empty VFS with no root mount.
func New() *VFS {
	return &VFS{}
}

// Mount instantiates typ (looked up by name in the type registry) and
// installs it as the VFS root. Only one root mount is supported at a
// time, matching spec.md's "exactly one root node per mount" plus a
// single-ramdisk-root kernel boot.
func (v *VFS) Mount(typeName string, flags int, data interface{}) (*Mount, error) {
	typ, err := LookupType(typeName)
	if err != nil {
		return nil, err
	}
	m, err := typ.Mnt(flags, data)
	if err != nil {
		return nil, fmt.Errorf("vfs: mount %q: %w", typeName, err)
	}
	m.Type = typ

	v.mu.Lock()
	v.root = m
	v.mu.Unlock()
	return m, nil
}

// Root returns the VFS's root node, or kerr.ErrNotFound if nothing is
// mounted yet.
func (v *VFS) Root() (*Node, error) {
	v.mu.Lock()
	m := v.root
	v.mu.Unlock()
	if m == nil {
		return nil, fmt.Errorf("vfs: no root mount: %w", kerr.ErrNotFound)
	}
	return m.Root, nil
}

// Lookup resolves path against the root mount, returning a node with
// an incremented reference, or kerr.ErrNotFound if any component is
// absent. typeHint is currently advisory only (spec.md leaves its use
// unspecified beyond "type_hint"); callers pass the type they expect
// and Lookup does not reject a mismatch, mirroring the permissive
// original.
func (v *VFS) Lookup(p string, typeHint NodeType) (*Node, error) {
	root, err := v.Root()
	if err != nil {
		return nil, err
	}
	_ = typeHint

	clean := strings.Trim(path.Clean("/"+p), "/")
	if clean == "" {
		root.Ref()
		return root, nil
	}

	cur := root
	for _, comp := range strings.Split(clean, "/") {
		if !cur.Caps.Has(CapFinddir) {
			return nil, fmt.Errorf("vfs: %s: %w", cur.Name, kerr.ErrNotSupported)
		}
		ino, err := cur.Ops.Finddir(cur, comp)
		if err != nil {
			return nil, err
		}
		next, err := cur.Mount.Ops.ReadNode(cur.Mount, ino)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// Create creates a new node named by the final component of p, with
// the given type, under its parent directory — the parent must
// already exist and support Create (spec.md §4.2's vfs_create).
func (v *VFS) Create(p string, typ NodeType) (*Node, error) {
	clean := strings.Trim(path.Clean("/"+p), "/")
	if clean == "" {
		return nil, fmt.Errorf("vfs: create %q: %w", p, kerr.ErrInval)
	}
	dir, base := path.Split(clean)
	parent, err := v.Lookup(strings.TrimSuffix(dir, "/"), Directory)
	if err != nil {
		return nil, err
	}
	if !parent.Caps.Has(CapCreate) {
		return nil, fmt.Errorf("vfs: %s: %w", parent.Name, kerr.ErrNotSupported)
	}
	return parent.Ops.Create(parent, base, typ)
}

// Read dispatches to n's Read op, clamped and validated by the
// backend per spec.md's ramdisk semantics.
func Read(n *Node, offset, size uint32, buf []byte) (int, error) {
	if !n.Caps.Has(CapRead) {
		return 0, fmt.Errorf("vfs: %s: %w", n.Name, kerr.ErrNotSupported)
	}
	return n.Ops.Read(n, offset, size, buf)
}

// Write dispatches to n's Write op.
func Write(n *Node, offset uint32, buf []byte) (int, error) {
	if !n.Caps.Has(CapWrite) {
		return 0, fmt.Errorf("vfs: %s: %w", n.Name, kerr.ErrNotSupported)
	}
	return n.Ops.Write(n, offset, buf)
}

// Readdir dispatches to n's Readdir op.
func Readdir(n *Node, index int) (*Dirent, error) {
	if !n.Caps.Has(CapReaddir) {
		return nil, fmt.Errorf("vfs: %s: %w", n.Name, kerr.ErrNotSupported)
	}
	return n.Ops.Readdir(n, index)
}

// Close dispatches to n's Close op if present, then drops the
// caller's reference. A backend without a Close op is treated as
// always-closeable (spec.md's ramfs close is a pure ref-count
// decrement with nothing else to flush).
func Close(n *Node) error {
	if n.Caps.Has(CapClose) {
		if err := n.Ops.Close(n); err != nil {
			return err
		}
	}
	n.Unref()
	return nil
}
