// Package ramfs implements the "ramfs" VFS type: a read-only archive
// of files laid out contiguously in memory, with a fixed amount of
// slack reserved so that in-memory directories can be created after
// mount. It is the Go port of original_source/kernel/fs/initrd.c,
// generalized the way perkeep's pkg/blobserver/memory generalizes an
// in-memory blob store: register a constructor under a name, hold
// state behind a mutex, and answer the storage interface the core
// dispatches through.
package ramfs

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"matrixkernel.dev/kernel/kerr"
	"matrixkernel.dev/kernel/vfs"
)

// TypeName is the name this backend registers under.
const TypeName = "ramfs"

// Slack is the number of extra node slots reserved beyond the
// archive's file count, so Create can succeed for new in-memory
// directories (original_source: "12 more nodes for creating new
// nodes").
const Slack = 12

// NameMax, headerSize and recordSize describe the on-disk archive
// layout from spec.md §6: a uint32 file count, followed by
// fixed-size records of {name[NameMax], offset uint32, length
// uint32}.
const (
	NameMax    = 128
	headerSize = 4
	recordSize = NameMax + 4 + 4
)

func init() {
	vfs.RegisterType(&vfs.Type{
		Name: TypeName,
		Desc: "Ramdisk file system",
		Mnt:  mount,
	})
}

// record mirrors original_source's struct ramfs_node: a flat,
// backend-side directory entry. Only File-typed records carry data;
// Directory records (the root, and anything created afterward) don't.
type record struct {
	name   string
	ino    uint64
	typ    vfs.NodeType
	length uint32
	mask   uint32
	data   []byte
}

// Storage holds the mounted archive's node table. Node creation is
// guarded by mu — spec.md §5 flags the original create path as
// unsynchronized under concurrent directory creation; this port adds
// the lock spec.md's "open question" anticipates a stricter
// reimplementation would add.
type Storage struct {
	mu    sync.Mutex
	nodes []record // len == current count, cap == nrFiles+Slack
}

func mount(flags int, data interface{}) (*vfs.Mount, error) {
	archive, ok := data.([]byte)
	if !ok {
		return nil, fmt.Errorf("ramfs: mount data must be []byte archive: %w", kerr.ErrInval)
	}

	s, err := parseArchive(archive)
	if err != nil {
		return nil, err
	}

	m := &vfs.Mount{Data: s}
	m.Ops = &vfs.MountOps{ReadNode: s.readNode}

	root := vfs.NodeAlloc(m, vfs.Directory, ops(), s)
	root.Name = "initrd-root"
	root.Ino = 0
	m.Root = root
	return m, nil
}

func parseArchive(archive []byte) (*Storage, error) {
	if len(archive) < headerSize {
		return nil, fmt.Errorf("ramfs: archive too small for header: %w", kerr.ErrInval)
	}
	nrFiles := int(binary.LittleEndian.Uint32(archive[0:4]))

	needed := headerSize + nrFiles*recordSize
	if len(archive) < needed {
		return nil, fmt.Errorf("ramfs: archive too small for %d file records: %w", nrFiles, kerr.ErrInval)
	}

	nodes := make([]record, 0, nrFiles+Slack)
	for i := 0; i < nrFiles; i++ {
		off := headerSize + i*recordSize
		name := cString(archive[off : off+NameMax])
		fileOff := binary.LittleEndian.Uint32(archive[off+NameMax : off+NameMax+4])
		length := binary.LittleEndian.Uint32(archive[off+NameMax+4 : off+NameMax+8])

		// original_source rewrites file_hdrs[i].offset to an absolute
		// address (location + relative offset) at mount time. In a
		// hosted Go slice the archive itself is the base, so the
		// on-disk offset already indexes directly into it.
		if uint64(fileOff)+uint64(length) > uint64(len(archive)) {
			return nil, fmt.Errorf("ramfs: file %q extends past archive end: %w", name, kerr.ErrInval)
		}

		nodes = append(nodes, record{
			name:   name,
			ino:    uint64(i + 1),
			typ:    vfs.File,
			length: length,
			mask:   0755,
			data:   archive[fileOff : fileOff+length],
		})
	}

	return &Storage{nodes: nodes}, nil
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func ops() *vfs.Ops {
	return &vfs.Ops{
		Read:    readOp,
		Create:  createOp,
		Close:   closeOp,
		Readdir: readdirOp,
		Finddir: finddirOp,
	}
}

func storageOf(n *vfs.Node) *Storage {
	return n.Data.(*Storage)
}

// findByIno must be called with s.mu held.
func (s *Storage) findByIno(ino uint64) (record, bool) {
	for _, r := range s.nodes {
		if r.ino == ino {
			return r, true
		}
	}
	return record{}, false
}

func readOp(n *vfs.Node, offset, size uint32, buf []byte) (int, error) {
	s := storageOf(n)
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.findByIno(n.Ino)
	if !ok {
		return 0, fmt.Errorf("ramfs: inode %d: %w", n.Ino, kerr.ErrNotFound)
	}
	if offset > rec.length {
		return 0, nil
	}
	avail := rec.length - offset
	if size > avail {
		size = avail
	}
	return copy(buf, rec.data[offset:offset+size]), nil
}

func createOp(parent *vfs.Node, name string, typ vfs.NodeType) (*vfs.Node, error) {
	if parent.Type != vfs.Directory {
		return nil, fmt.Errorf("ramfs: create under non-directory: %w", kerr.ErrInval)
	}
	if typ != vfs.Directory {
		return nil, fmt.Errorf("ramfs: only directory creation is supported: %w", kerr.ErrInval)
	}

	s := storageOf(parent)
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.nodes) >= cap(s.nodes) {
		return nil, fmt.Errorf("ramfs: node table full: %w", kerr.ErrCapacity)
	}

	rec := record{
		name: name,
		ino:  uint64(len(s.nodes) + 1),
		typ:  vfs.Directory,
	}
	s.nodes = append(s.nodes, rec)

	n := vfs.NodeAlloc(parent.Mount, vfs.Directory, ops(), s)
	n.Ino = rec.ino
	n.Name = name
	return n, nil
}

func closeOp(n *vfs.Node) error {
	return nil
}

func readdirOp(n *vfs.Node, index int) (*vfs.Dirent, error) {
	s := storageOf(n)
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.nodes) {
		return nil, fmt.Errorf("ramfs: readdir index %d: %w", index, kerr.ErrInval)
	}
	rec := s.nodes[index]
	return &vfs.Dirent{Ino: rec.ino, Name: rec.name}, nil
}

func finddirOp(n *vfs.Node, name string) (uint64, error) {
	s := storageOf(n)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.nodes {
		if rec.name == name {
			return rec.ino, nil
		}
	}
	return 0, fmt.Errorf("ramfs: %q: %w", name, kerr.ErrNotFound)
}

func (s *Storage) readNode(m *vfs.Mount, id uint64) (*vfs.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.findByIno(id)
	if !ok {
		return nil, fmt.Errorf("ramfs: inode %d: %w", id, kerr.ErrNotFound)
	}
	n := vfs.NodeAlloc(m, rec.typ, ops(), s)
	n.Ino = rec.ino
	n.Name = rec.name
	n.Length = rec.length
	n.Mask = rec.mask
	return n, nil
}

// BuildArchive assembles a ramfs archive in spec.md §6's binary
// format from a set of (name, contents) pairs, for tests and for
// cmd/matrixkernel-boot's bundled demo archive.
func BuildArchive(files map[string][]byte) []byte {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	// Deterministic ordering so the encoded archive (and therefore the
	// assigned inode numbers) doesn't depend on map iteration order.
	sort.Strings(names)

	nrFiles := len(names)
	buf := make([]byte, headerSize+nrFiles*recordSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(nrFiles))

	dataOff := uint32(len(buf))
	var data []byte
	for i, name := range names {
		contents := files[name]
		off := headerSize + i*recordSize
		copy(buf[off:off+NameMax], name)
		binary.LittleEndian.PutUint32(buf[off+NameMax:off+NameMax+4], dataOff+uint32(len(data)))
		binary.LittleEndian.PutUint32(buf[off+NameMax+4:off+NameMax+8], uint32(len(contents)))
		data = append(data, contents...)
	}
	return append(buf, data...)
}
