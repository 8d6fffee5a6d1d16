// Package migration applies and scaffolds the SQL schema migrations.
package migration

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const (
	upSuffix      = ".up.sql"
	downSuffix    = ".down.sql"
	versionDigits = 6
)

var fileTemplate = template.Must(template.New("migration").Parse(`-- {{.Name}}{{if .Down}} (rollback){{end}}
-- Created: {{.Created}}
{{- with .Description}}
-- {{.}}
{{- end}}

`))

// File is one up/down migration pair
type File struct {
	Version  uint
	Name     string
	UpPath   string
	DownPath string
}

// Base returns the file name shared by both halves, e.g. "000002_create_debts"
func (f File) Base() string {
	return fmt.Sprintf("%0*d_%s", versionDigits, f.Version, f.Name)
}

// List returns the migration pairs found in fsys, ordered by version.
// A version with only one half present is an error.
func List(fsys fs.FS) ([]File, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	halves := make(map[string]int)
	byBase := make(map[string]File)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		var base string
		switch {
		case strings.HasSuffix(name, upSuffix):
			base = strings.TrimSuffix(name, upSuffix)
		case strings.HasSuffix(name, downSuffix):
			base = strings.TrimSuffix(name, downSuffix)
		default:
			continue
		}
		f, err := parseBase(base)
		if err != nil {
			return nil, err
		}
		f.UpPath = base + upSuffix
		f.DownPath = base + downSuffix
		byBase[base] = f
		halves[base]++
	}

	files := make([]File, 0, len(byBase))
	seen := make(map[uint]string)
	for base, f := range byBase {
		if halves[base] != 2 {
			return nil, fmt.Errorf("migration %s is missing its up or down file", base)
		}
		if other, dup := seen[f.Version]; dup {
			return nil, fmt.Errorf("migrations %s and %s share version %d", other, base, f.Version)
		}
		seen[f.Version] = base
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

func parseBase(base string) (File, error) {
	idx := strings.IndexByte(base, '_')
	if idx <= 0 {
		return File{}, fmt.Errorf("migration %q has no version prefix", base)
	}
	v, err := strconv.ParseUint(base[:idx], 10, 32)
	if err != nil {
		return File{}, fmt.Errorf("migration %q has a non-numeric version: %w", base, err)
	}
	return File{Version: uint(v), Name: base[idx+1:]}, nil
}

// Create writes an empty pair with the next sequential version into dir.
func Create(dir, name, description string) (*File, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}
	existing, err := List(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	f := &File{Version: next, Name: slug}
	f.UpPath = filepath.Join(dir, f.Base()+upSuffix)
	f.DownPath = filepath.Join(dir, f.Base()+downSuffix)

	created := time.Now().UTC().Format(time.RFC3339)
	if err := writeTemplate(f.UpPath, f.Base(), description, created, false); err != nil {
		return nil, err
	}
	if err := writeTemplate(f.DownPath, f.Base(), description, created, true); err != nil {
		_ = os.Remove(f.UpPath)
		return nil, err
	}
	return f, nil
}

func writeTemplate(path, name, description, created string, down bool) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()
	return fileTemplate.Execute(out, map[string]any{
		"Name":        name,
		"Description": description,
		"Created":     created,
		"Down":        down,
	})
}

// sanitizeName lowercases name and collapses separators into single underscores
func sanitizeName(name string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pending = true
		}
	}
	return b.String()
}
