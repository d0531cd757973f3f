package schematic

import (
	"fmt"
	"path/filepath"
)

// Project is a root schematic and every file reachable through its sheets.
// A file used by several sheets is parsed once.
type Project struct {
	RootFile string
	Root     *Schematic
	Files    map[string]*Schematic // keyed by cleaned path
}

// LoadProject parses filename and, recursively, the files of its sheets.
// Sheet file names are relative to the file that contains the sheet.
func LoadProject(filename string) (*Project, error) {
	p := &Project{
		RootFile: filepath.Clean(filename),
		Files:    make(map[string]*Schematic),
	}

	root, err := p.load(p.RootFile)
	if err != nil {
		return nil, err
	}
	p.Root = root

	return p, nil
}

func (p *Project) load(filename string) (*Schematic, error) {
	if sch, ok := p.Files[filename]; ok {
		return sch, nil
	}

	sch, err := ParseFile(filename)
	if err != nil {
		return nil, err
	}
	// registered before descending so recursive sheets terminate
	p.Files[filename] = sch

	for _, sheet := range sch.Sheets {
		if sheet.FileName == "" {
			return nil, fmt.Errorf("%s: sheet %q has no file name", filename, sheet.Name)
		}
		if _, err := p.load(p.SheetFile(filename, sheet)); err != nil {
			return nil, fmt.Errorf("failed to load sheet %q: %w", sheet.Name, err)
		}
	}

	return sch, nil
}

// SheetFile returns the path of the file shown by sheet, placed in parent
func (p *Project) SheetFile(parent string, sheet Sheet) string {
	if filepath.IsAbs(sheet.FileName) {
		return filepath.Clean(sheet.FileName)
	}
	return filepath.Join(filepath.Dir(parent), sheet.FileName)
}

// File returns the parsed file at path
func (p *Project) File(path string) *Schematic {
	return p.Files[filepath.Clean(path)]
}
