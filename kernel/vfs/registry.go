package vfs

import (
	"fmt"
	"sync"

	"matrixkernel.dev/kernel/kerr"
)

// The type registry is process-global and name-keyed, mirroring
// perkeep's pkg/blobserver.RegisterStorageConstructor: backends call
// RegisterType from an init() to make themselves mountable, and
// VFS.Mount looks the name back up at boot time. Unlike
// blobserver's registry (which panics on a duplicate name, since that
// indicates two compiled-in packages collide), VFS type registration
// can be re-triggered at runtime by a re-init path, so a duplicate
// name returns kerr.ErrDuplicate instead of panicking.
var (
	typeMu    sync.Mutex
	typeTable = make(map[string]*Type)
)

// RegisterType adds typ to the registry under typ.Name. It is
// idempotent in the sense that registering the exact same *Type value
// twice is a no-op; registering a second, distinct Type under an
// already-used name fails with kerr.ErrDuplicate (spec.md §4.2).
func RegisterType(typ *Type) error {
	typeMu.Lock()
	defer typeMu.Unlock()

	if existing, ok := typeTable[typ.Name]; ok {
		if existing == typ {
			return nil
		}
		return fmt.Errorf("vfs: type %q already registered: %w", typ.Name, kerr.ErrDuplicate)
	}
	typeTable[typ.Name] = typ
	return nil
}

// LookupType returns the registered type named name, or
// kerr.ErrNotFound.
func LookupType(name string) (*Type, error) {
	typeMu.Lock()
	defer typeMu.Unlock()

	typ, ok := typeTable[name]
	if !ok {
		return nil, fmt.Errorf("vfs: type %q: %w", name, kerr.ErrNotFound)
	}
	return typ, nil
}

// UnregisterType removes a type from the registry. Used by tests to
// avoid cross-test duplicate-registration errors; production code has
// no analog (types are registered once at boot and never removed).
func UnregisterType(name string) {
	typeMu.Lock()
	defer typeMu.Unlock()
	delete(typeTable, name)
}
