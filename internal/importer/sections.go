package importer

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/starford/decisionlog/internal/apperr"
	"github.com/starford/decisionlog/internal/models"
	"github.com/starford/decisionlog/internal/storage"
)

// SectionCollection receives imported documentation sections.
type SectionCollection interface {
	AddSection(s *models.Section)
	Sections() []*models.Section
}

var (
	markdownSectionRe = regexp.MustCompile(`(?m)^## ([^\r\n]*?)\r?$`)
	asciiDocSectionRe = regexp.MustCompile(`(?m)^== ([^\r\n]*?)\r?$`)
)

// SectionImporter imports free-form Markdown and AsciiDoc files, one section
// per file, in filename order. No cross-referencing is done.
type SectionImporter struct {
	dir       storage.Dir
	recursive bool
}

// NewSectionImporter creates a section importer. When recursive is set,
// sub-directories are imported depth-first after their position in the
// listing.
func NewSectionImporter(dir storage.Dir, recursive bool) *SectionImporter {
	if dir == nil {
		dir = storage.Local{}
	}
	return &SectionImporter{dir: dir, recursive: recursive}
}

// Import imports path, which may be a single file or a directory.
func (s *SectionImporter) Import(coll SectionCollection, path string) error {
	if err := s.importSections(coll, path); err != nil {
		return &ImportError{Dialect: "sections", Path: path, cause: err}
	}
	return nil
}

func (s *SectionImporter) importSections(coll SectionCollection, path string) error {
	if coll == nil {
		return fmt.Errorf("%w: a documentation collection must be specified", apperr.ErrInvalidArgument)
	}
	if path == "" {
		return fmt.Errorf("%w: a path must be specified", apperr.ErrInvalidArgument)
	}
	info, err := s.dir.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s does not exist", apperr.ErrInvalidArgument, s.dir.Abs(path))
		}
		return err
	}
	if !info.IsDir() {
		return s.importFile(coll, path, filepath.Dir(path))
	}
	return s.importDir(coll, path, path)
}

func (s *SectionImporter) importDir(coll SectionCollection, root, dir string) error {
	entries, err := s.dir.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		switch {
		case e.IsDir():
			if s.recursive {
				if err := s.importDir(coll, root, p); err != nil {
					return err
				}
			}
		case strings.HasPrefix(e.Name(), "."):
		default:
			if err := s.importFile(coll, p, root); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *SectionImporter) importFile(coll SectionCollection, path, root string) error {
	format, ok := FormatOf(path)
	if !ok {
		return nil
	}
	data, err := s.dir.ReadFile(path)
	if err != nil {
		return err
	}
	content := string(data)

	title := filepath.Base(path)
	re := markdownSectionRe
	if format == models.FormatAsciiDoc {
		re = asciiDocSectionRe
	}
	if m := re.FindStringSubmatch(content); m != nil {
		title = m[1]
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	coll.AddSection(&models.Section{
		Title:    title,
		Filename: filepath.ToSlash(rel),
		Format:   format,
		Content:  content,
	})
	return nil
}

// FormatOf reports the documentation format implied by a file extension.
func FormatOf(name string) (models.Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown", ".text":
		return models.FormatMarkdown, true
	case ".adoc", ".asciidoc", ".asc":
		return models.FormatAsciiDoc, true
	default:
		return "", false
	}
}
