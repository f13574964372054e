package migration

import (
	"errors"
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

// VersionWidth is the zero padding of sequential migration versions
const VersionWidth = 6

var fileTemplate = template.Must(template.New("migration").Parse(`-- {{.Name}} ({{.Direction}})
-- Created: {{.Created}}

`))

// File is one migration: a version with its up and, optionally, down script
type File struct {
	Version uint
	Name    string
	HasUp   bool
	HasDown bool
}

// BaseName returns the NNNNNN_name stem shared by the up and down scripts
func (f File) BaseName() string {
	return fmt.Sprintf("%0*d_%s", VersionWidth, f.Version, f.Name)
}

// Create writes an empty up/down pair with the next sequential version
func Create(dir, name string) (File, error) {
	slug := slugify(name)
	if slug == "" {
		return File{}, errors.New("migration name must contain letters or digits")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return File{}, fmt.Errorf("create migrations directory: %w", err)
	}

	existing, err := List(os.DirFS(dir))
	if err != nil {
		return File{}, err
	}
	next := uint(1)
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	f := File{Version: next, Name: slug, HasUp: true, HasDown: true}
	created := time.Now().UTC().Format(time.RFC3339)
	for _, direction := range []string{"up", "down"} {
		path := filepath.Join(dir, f.BaseName()+"."+direction+".sql")
		if err := writeTemplate(path, name, direction, created); err != nil {
			return File{}, err
		}
	}
	return f, nil
}

func writeTemplate(path, name, direction, created string) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()
	return fileTemplate.Execute(out, map[string]string{
		"Name":      name,
		"Direction": direction,
		"Created":   created,
	})
}

// List returns the migrations found in files, ordered by version. Files that
// do not follow the NNNNNN_name.(up|down).sql pattern are ignored.
func List(files fs.FS) ([]File, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := make(map[uint]*File)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version, name, direction, ok := parseFileName(entry.Name())
		if !ok {
			continue
		}
		f, seen := byVersion[version]
		if !seen {
			f = &File{Version: version, Name: name}
			byVersion[version] = f
		}
		switch direction {
		case "up":
			f.HasUp = true
		case "down":
			f.HasDown = true
		}
	}

	out := make([]File, 0, len(byVersion))
	for _, f := range byVersion {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func parseFileName(file string) (version uint, name, direction string, ok bool) {
	stem, found := strings.CutSuffix(file, ".sql")
	if !found {
		return 0, "", "", false
	}
	dot := strings.LastIndexByte(stem, '.')
	if dot < 0 {
		return 0, "", "", false
	}
	stem, direction = stem[:dot], stem[dot+1:]
	if direction != "up" && direction != "down" {
		return 0, "", "", false
	}
	rawVersion, name, found := strings.Cut(stem, "_")
	if !found || name == "" {
		return 0, "", "", false
	}
	v, err := strconv.ParseUint(rawVersion, 10, 64)
	if err != nil {
		return 0, "", "", false
	}
	return uint(v), name, direction, true
}

// slugify lower-cases a name and joins its words with underscores
func slugify(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			pendingSep = true
		}
	}
	return b.String()
}
