package bootconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"matrixkernel.dev/kernel/bootconfig"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "boot.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRequiredStringMissingFailsValidate(t *testing.T) {
	path := writeConfig(t, `{"hostname": "Matrix"}`)
	o, err := bootconfig.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	o.RequiredString("hostname")
	_ = o.RequiredString("archive") // missing: accumulates an error
	if err := o.Validate(); err == nil {
		t.Fatal("Validate() should fail when a required key is missing")
	}
}

func TestOptionalDefaultsApply(t *testing.T) {
	path := writeConfig(t, `{}`)
	o, err := bootconfig.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := o.OptionalString("hostname", "Matrix"); got != "Matrix" {
		t.Fatalf("OptionalString default = %q, want Matrix", got)
	}
	if got := o.OptionalInt("demoThreads", 3); got != 3 {
		t.Fatalf("OptionalInt default = %d, want 3", got)
	}
	if err := o.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestUnknownKeyFailsValidate(t *testing.T) {
	path := writeConfig(t, `{"hostname": "Matrix", "bogus": true}`)
	o, err := bootconfig.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	o.OptionalString("hostname", "Matrix")
	if err := o.Validate(); err == nil {
		t.Fatal("Validate() should reject an unaccessed, unknown key")
	}
}
