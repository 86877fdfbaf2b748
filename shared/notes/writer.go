// Package notes persists summarized content as markdown files, deriving
// filesystem-safe names and never overwriting existing notes.
package notes

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

const maxNameLength = 200

var (
	headingMarksRe = regexp.MustCompile(`^\s*#+\s*`)
	invalidCharsRe = regexp.MustCompile(`[\\/*?:"<>|]`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	hyphenRunsRe   = regexp.MustCompile(`-+`)
)

// Writer saves notes into a target directory.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Save persists content under a name derived from its first line.
// It returns the path written.
func (w *Writer) Save(content string) (string, error) {
	return w.save(content, nameFromContent(content))
}

// SaveWithTitle persists content under a name derived from the given title,
// falling back to the content's first line when the title sanitizes away.
func (w *Writer) SaveWithTitle(content, title string) (string, error) {
	name := sanitizeName(title)
	if name == "" {
		name = nameFromContent(content)
	}
	return w.save(content, name)
}

func (w *Writer) save(content, baseName string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create notes directory %s: %w", w.dir, err)
	}

	if baseName == "" {
		baseName = "untitled"
	}

	// Existing files are never overwritten; colliding names get a numeric
	// suffix instead.
	path := filepath.Join(w.dir, baseName+".md")
	for counter := 1; fileExists(path); counter++ {
		path = filepath.Join(w.dir, fmt.Sprintf("%s-%d.md", baseName, counter))
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write note: %w", err)
	}

	logrus.WithField("path", path).Info("Note saved")
	return path, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func nameFromContent(content string) string {
	firstLine := strings.TrimSpace(content)
	if idx := strings.IndexByte(firstLine, '\n'); idx != -1 {
		firstLine = firstLine[:idx]
	}
	return sanitizeName(firstLine)
}

// sanitizeName turns a title or heading into an a-b-c style file name:
// markdown heading marks and unsafe characters removed, whitespace and
// hyphen runs collapsed to single hyphens, length capped.
func sanitizeName(title string) string {
	name := headingMarksRe.ReplaceAllString(title, "")
	name = invalidCharsRe.ReplaceAllString(name, "")
	name = whitespaceRe.ReplaceAllString(name, "-")
	name = hyphenRunsRe.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")

	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}
	return name
}
