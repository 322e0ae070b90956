// Package testutil provides golden-fixture comparison for package tests,
// replacing the binary-execution test runner the teacher uses (out of
// scope here: spec-level tests never invoke an assembler or linker).
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
)

// Dir is a directory of golden fixtures, one ".golden" file per case plus,
// when one exists, a sibling ".sum" file recording that golden file's
// xxhash so a hand-edited fixture that forgot to regenerate its sum is
// caught instead of silently passing. A case with no ".sum" file is
// compared without the checksum check.
type Dir struct {
	path string
}

func New(path string) *Dir { return &Dir{path: path} }

// AssertString compares got against the fixture name.golden, failing t
// with a structural diff on mismatch. Set MCC_UPDATE_GOLDEN=1 to
// (re)write the fixture and its checksum instead of comparing.
func (d *Dir) AssertString(t *testing.T, name, got string) {
	t.Helper()
	goldenPath := filepath.Join(d.path, name+".golden")
	sumPath := filepath.Join(d.path, name+".sum")

	if os.Getenv("MCC_UPDATE_GOLDEN") != "" {
		if err := os.WriteFile(goldenPath, []byte(got), 0o644); err != nil {
			t.Fatalf("writing golden file: %v", err)
		}
		if err := os.WriteFile(sumPath, []byte(fmt.Sprintf("%x", xxhash.Sum64String(got))), 0o644); err != nil {
			t.Fatalf("writing golden sum: %v", err)
		}
		return
	}

	want, err := os.ReadFile(goldenPath)
	if err != nil {
		t.Fatalf("reading golden file %s: %v (run with MCC_UPDATE_GOLDEN=1 to create it)", goldenPath, err)
	}
	if sum, err := os.ReadFile(sumPath); err == nil {
		if got := fmt.Sprintf("%x", xxhash.Sum64(want)); got != string(sum) {
			t.Fatalf("golden file %s was edited without regenerating its checksum; rerun with MCC_UPDATE_GOLDEN=1", goldenPath)
		}
	}

	if diff := cmp.Diff(string(want), got); diff != "" {
		t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
	}
}
