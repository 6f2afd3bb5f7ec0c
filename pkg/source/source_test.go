package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func collect(t *testing.T, root string, filter Filter) []File {
	t.Helper()
	var out []File
	err := Walk(context.Background(), root, filter, func(f File) error {
		out = append(out, f)
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestNewFile(t *testing.T) {
	root := filepath.Join("/", "Import")

	f := NewFile(root, filepath.Join(root, "Finance", "Q1", "Report.PDF"), "")
	assert.Equal(t, "Report.PDF", f.Name)
	assert.Equal(t, ".pdf", f.Ext)
	assert.Equal(t, filepath.Join(root, "Finance", "Q1"), f.Dir)
	assert.Equal(t, "Finance/Q1/Report.PDF", f.Rel)
	assert.False(t, f.Migrated)

	marked := NewFile(root, filepath.Join(root, "Report.pdf.migrated"), "")
	assert.True(t, marked.Migrated)

	custom := NewFile(root, filepath.Join(root, "Report.pdf.done"), ".done")
	assert.True(t, custom.Migrated)
}

func TestWalkOrder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.txt":             "b",
		"a/z.pdf":           "z",
		"a/b/c.docx":        "c",
		"a/a.png.migrated":  "a",
		"Finance/Q1/report": "r",
	})

	var rels []string
	for _, f := range collect(t, root, Filter{}) {
		rels = append(rels, f.Rel)
	}

	assert.Equal(t, []string{
		"Finance/Q1/report",
		"a/a.png.migrated",
		"a/b/c.docx",
		"a/z.pdf",
		"b.txt",
	}, rels)
}

func TestWalkFilter(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"keep/report.pdf":  "x",
		"keep/notes.tmp":   "x",
		"archive/old.pdf":  "x",
		"top.docx":         "x",
		"deep/er/shot.png": "x",
	})

	filter := Filter{
		Include: []string{"**/*.pdf", "**/*.png", "*.docx"},
		Exclude: []string{"archive", "**/*.tmp"},
	}
	require.NoError(t, filter.Validate())

	got := map[string]bool{}
	for _, f := range collect(t, root, filter) {
		got[f.Rel] = f.Excluded
	}

	assert.Equal(t, map[string]bool{
		"deep/er/shot.png": false,
		"keep/notes.tmp":   true,
		"keep/report.pdf":  false,
		"top.docx":         false,
	}, got, "archive should not be entered at all")
}

func TestFilterValidate(t *testing.T) {
	assert.Error(t, Filter{Include: []string{"[unclosed"}}.Validate())
	assert.NoError(t, Filter{Include: []string{"**/*.pdf"}}.Validate())
}

func TestWalkMissingRoot(t *testing.T) {
	err := Walk(context.Background(), filepath.Join(t.TempDir(), "missing"), Filter{}, func(File) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCommit(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"Finance/report.pdf": "data"})

	f := NewFile(root, filepath.Join(root, "Finance", "report.pdf"), "")
	committed, err := Commit(context.Background(), f, "")
	require.NoError(t, err)

	assert.True(t, committed.Migrated)
	assert.Equal(t, "report.pdf.migrated", committed.Name)
	assert.NoFileExists(t, f.Path)
	assert.FileExists(t, committed.Path)

	_, err = Commit(context.Background(), committed, "")
	assert.ErrorIs(t, err, ErrAlreadyCommitted)
}

func TestCommitRefusesToOverwrite(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"report.pdf":          "new",
		"report.pdf.migrated": "old",
	})

	f := NewFile(root, filepath.Join(root, "report.pdf"), "")
	_, err := Commit(context.Background(), f, "")
	require.Error(t, err)
	assert.FileExists(t, f.Path)
}

func TestReadText(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"notes.txt": "hello\nworld"})

	text, err := ReadText(NewFile(root, filepath.Join(root, "notes.txt"), ""))
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", text)

	_, err = ReadText(NewFile(root, filepath.Join(root, "nope.txt"), ""))
	assert.Error(t, err)
}
