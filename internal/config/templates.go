package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

//go:embed defaults/templates/*.md
var templatesFS embed.FS

// Templates holds the report templates. Each is a text/template string.
type Templates struct {
	Summary string // markdown summary report
}

type templateLoader struct {
	embedFS embed.FS
}

// LoadTemplates loads all templates with fallback chain: local → global → embedded.
// Either directory may be empty to skip it.
func LoadTemplates(globalDir, localDir string) (*Templates, error) {
	loader := &templateLoader{embedFS: templatesFS}

	var t Templates
	var err error
	t.Summary, err = loader.load(localDir, globalDir, "summary.md")
	if err != nil {
		return nil, fmt.Errorf("load summary template: %w", err)
	}
	return &t, nil
}

func (l *templateLoader) load(localDir, globalDir, filename string) (string, error) {
	if localDir != "" {
		content, err := readTemplateFile(filepath.Join(localDir, "templates", filename))
		if err != nil {
			log.Printf("warning: failed to load local template %s: %v (falling back to global/embedded)", filename, err)
		} else if content != "" {
			return content, nil
		}
	}

	if globalDir != "" {
		content, err := readTemplateFile(filepath.Join(globalDir, "templates", filename))
		if err != nil {
			return "", err
		}
		if content != "" {
			return content, nil
		}
	}

	data, err := l.embedFS.ReadFile("defaults/templates/" + filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read embedded template %s: %w", filename, err)
	}
	return strings.TrimSpace(stripHeader(string(data))), nil
}

// readTemplateFile returns "" (not an error) if the file does not exist.
func readTemplateFile(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is constructed internally
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read template file %s: %w", path, err)
	}
	return strings.TrimSpace(stripHeader(string(data))), nil
}

// stripHeader drops the leading block of "# " comment lines. Markdown
// headings written as ## or deeper are kept, as is anything after the first
// non-comment line. Handles both LF and CRLF line endings.
func stripHeader(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	lines := strings.Split(content, "\n")
	i := 0
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed != "#" && !strings.HasPrefix(trimmed, "# ") {
			break
		}
		i++
	}
	return strings.Join(lines[i:], "\n")
}
