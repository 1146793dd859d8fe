// Package bootconfig is a trimmed JSON configuration helper for the
// kernel's boot-time settings (host name, demo thread count; the
// ramdisk archive path comes from a command-line flag instead). It is
// adapted from perkeep's pkg/jsonconfig:
// same accumulated-error-then-Validate shape, same
// required/optional-with-default accessor pairs, with the recursive
// $include/file-expansion machinery dropped — matrixkernel boots from
// one static config file, not a tree of server config fragments.
package bootconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Obj is a parsed JSON configuration object.
type Obj map[string]interface{}

// ReadFile reads and parses a boot config file into an Obj.
func ReadFile(path string) (Obj, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bootconfig: reading %s: %w", path, err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("bootconfig: parsing %s: %w", path, err)
	}
	return Obj(m), nil
}

func (o Obj) RequiredString(key string) string { return o.str(key, nil) }
func (o Obj) OptionalString(key, def string) string {
	return o.str(key, &def)
}

func (o Obj) str(key string, def *string) string {
	o.noteKnownKey(key)
	v, ok := o[key]
	if !ok {
		if def != nil {
			return *def
		}
		o.appendError(fmt.Errorf("missing required config key %q (string)", key))
		return ""
	}
	s, ok := v.(string)
	if !ok {
		o.appendError(fmt.Errorf("config key %q must be a string, got %T", key, v))
		return ""
	}
	return s
}

func (o Obj) RequiredInt(key string) int { return o.integer(key, nil) }
func (o Obj) OptionalInt(key string, def int) int {
	return o.integer(key, &def)
}

func (o Obj) integer(key string, def *int) int {
	o.noteKnownKey(key)
	v, ok := o[key]
	if !ok {
		if def != nil {
			return *def
		}
		o.appendError(fmt.Errorf("missing required config key %q (integer)", key))
		return 0
	}
	f, ok := v.(float64)
	if !ok {
		o.appendError(fmt.Errorf("config key %q must be a number, got %T", key, v))
		return 0
	}
	return int(f)
}

func (o Obj) OptionalBool(key string, def bool) bool {
	o.noteKnownKey(key)
	v, ok := o[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		o.appendError(fmt.Errorf("config key %q must be a boolean, got %T", key, v))
		return def
	}
	return b
}

func (o Obj) noteKnownKey(key string) {
	known, ok := o["_knownkeys"].(map[string]bool)
	if !ok {
		known = make(map[string]bool)
		o["_knownkeys"] = known
	}
	known[key] = true
}

func (o Obj) appendError(err error) {
	if existing, ok := o["_errors"].([]error); ok {
		o["_errors"] = append(existing, err)
	} else {
		o["_errors"] = []error{err}
	}
}

// Validate reports any accumulated missing/mistyped keys, plus any
// key never accessed via a Required*/Optional* call — the same
// "unknown key" check jsonconfig.Validate performs, so a typo'd config
// key fails loudly instead of silently falling back to a default.
func (o Obj) Validate() error {
	known, _ := o["_knownkeys"].(map[string]bool)
	for k := range o {
		if strings.HasPrefix(k, "_") {
			continue
		}
		if !known[k] {
			o.appendError(fmt.Errorf("unknown config key %q", k))
		}
	}

	errs, ok := o["_errors"].([]error)
	if !ok || len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("bootconfig: multiple errors: %s", strings.Join(msgs, "; "))
}
