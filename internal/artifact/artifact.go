// Package artifact stores generated files on local disk and names the public
// path they are served under.
package artifact

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
)

// PublicPrefix is the URL path the artifact directory is mounted at.
const PublicPrefix = "/output/"

type Store struct {
	dir string
}

// NewStore creates dir if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: creating %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir is the directory served under PublicPrefix.
func (s *Store) Dir() string {
	return s.dir
}

// WritePDF renders content as an A4 document, one paragraph per line, and
// returns its public path.
func (s *Store) WritePDF(name, content string) (string, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Minutes of Meeting", true)
	doc.SetCreator("my-applications", true)
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()
	doc.SetFont("Arial", "", 12)

	// core fonts are cp1252
	tr := doc.UnicodeTranslatorFromDescriptor("")
	for _, line := range strings.Split(content, "\n") {
		doc.MultiCell(0, 8, tr(line), "", "", false)
	}
	if err := doc.Error(); err != nil {
		return "", fmt.Errorf("artifact: rendering %s: %w", name, err)
	}

	return s.write(name, doc.Output)
}

// write publishes name atomically: fill writes a temp file that is renamed
// into place, so the file appears complete or not at all. name must be a
// bare file name.
func (s *Store) write(name string, fill func(w io.Writer) error) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("artifact: invalid file name %q", name)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-"+name+"-*")
	if err != nil {
		return "", fmt.Errorf("artifact: creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after rename

	if err := fill(tmp); err != nil {
		tmp.Close()
		return "", fmt.Errorf("artifact: writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("artifact: closing %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("artifact: chmod %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("artifact: publishing %s: %w", name, err)
	}

	return path.Join(PublicPrefix, name), nil
}
