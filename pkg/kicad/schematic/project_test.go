package schematic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadProjectSharesFiles(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "top.kicad_sch", `(kicad_sch (version 20231120) (generator eeschema) (uuid "root")
		(sheet (at 0 0) (size 10 10) (uuid "a")
			(property "Sheetname" "left") (property "Sheetfile" "sub/child.kicad_sch"))
		(sheet (at 20 0) (size 10 10) (uuid "b")
			(property "Sheetname" "right") (property "Sheetfile" "sub/child.kicad_sch"))
	)`)
	writeFile(t, dir, "sub/child.kicad_sch", `(kicad_sch (version 20231120) (generator eeschema) (uuid "child")
		(hierarchical_label "IN" (shape input) (at 0 0 0))
	)`)

	p, err := LoadProject(root)
	require.NoError(t, err)

	assert.Len(t, p.Files, 2)
	assert.Equal(t, UUID("root"), p.Root.UUID)

	child := p.File(filepath.Join(dir, "sub", "child.kicad_sch"))
	require.NotNil(t, child)
	assert.Len(t, child.HierLabels, 1)
	assert.Same(t, child, p.File(p.SheetFile(root, p.Root.Sheets[1])))
}

func TestLoadProjectRecursiveSheet(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "loop.kicad_sch", `(kicad_sch (version 20231120) (generator eeschema)
		(sheet (at 0 0) (size 10 10) (uuid "s")
			(property "Sheetname" "self") (property "Sheetfile" "loop.kicad_sch"))
	)`)

	p, err := LoadProject(root)
	require.NoError(t, err)
	assert.Len(t, p.Files, 1)
}

func TestLoadProjectMissingSheet(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "top.kicad_sch", `(kicad_sch (version 20231120) (generator eeschema)
		(sheet (at 0 0) (size 10 10) (uuid "s")
			(property "Sheetname" "gone") (property "Sheetfile" "missing.kicad_sch"))
	)`)

	_, err := LoadProject(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to load sheet "gone"`)
}
