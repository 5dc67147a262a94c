package catalog

import (
	"path/filepath"
	"testing"

	"github.com/roach88/idxc/internal/indexdef"
	"github.com/roach88/idxc/internal/testutil"
)

// createTestCatalog creates a catalog in a temp dir with sequential revisions.
func createTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	c, err := Open(path, WithRevisions(testutil.NewSequentialRevisions()))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func testIndex(name string, maps ...string) *indexdef.IndexDefinition {
	return &indexdef.IndexDefinition{Name: name, Maps: maps}
}

func mustIndexRecord(t *testing.T, d *indexdef.IndexDefinition) Record {
	t.Helper()
	rec, err := IndexRecord(d)
	if err != nil {
		t.Fatalf("IndexRecord() failed: %v", err)
	}
	return rec
}
