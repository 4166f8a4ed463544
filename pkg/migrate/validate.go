package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"

	"go.uber.org/multierr"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

const (
	annotationUp        = "-- +goose Up"
	annotationDown      = "-- +goose Down"
	annotationStmtBegin = "-- +goose StatementBegin"
	annotationStmtEnd   = "-- +goose StatementEnd"
)

// ValidateDir validates the migrations stored in dir on disk.
func ValidateDir(dir string) (int, error) {
	if dir == "" {
		return 0, fmt.Errorf("dir is required")
	}
	if _, err := os.Stat(dir); err != nil {
		return 0, fmt.Errorf("read dir %q: %w", dir, err)
	}
	return ValidateFS(os.DirFS(dir), ".")
}

// ValidateFS checks every .sql file under root: the file name, version
// uniqueness, the Up/Down markers and balanced statement blocks. All
// problems are reported together. It returns the number of migrations.
func ValidateFS(fsys fs.FS, root string) (int, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return 0, fmt.Errorf("read dir %q: %w", root, err)
	}

	seen := map[string]string{}
	var errs error
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name))
			continue
		}
		if prev, ok := seen[m[1]]; ok {
			errs = multierr.Append(errs, fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name))
			continue
		}
		seen[m[1]] = name

		body, err := fs.ReadFile(fsys, path.Join(root, name))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read file %q: %w", name, err))
			continue
		}
		errs = multierr.Append(errs, checkAnnotations(name, string(body)))
	}
	if errs != nil {
		return 0, errs
	}
	return len(seen), nil
}

func checkAnnotations(name, body string) error {
	up := strings.Index(body, annotationUp)
	down := strings.Index(body, annotationDown)

	var errs error
	if up < 0 {
		errs = multierr.Append(errs, fmt.Errorf("migration %q missing %q", name, annotationUp))
	}
	if down < 0 {
		errs = multierr.Append(errs, fmt.Errorf("migration %q missing %q", name, annotationDown))
	}
	if up >= 0 && down >= 0 && down < up {
		errs = multierr.Append(errs, fmt.Errorf("migration %q declares Down before Up", name))
	}

	open := 0
	for _, line := range strings.Split(body, "\n") {
		switch strings.TrimSpace(line) {
		case annotationStmtBegin:
			open++
			if open > 1 {
				return multierr.Append(errs, fmt.Errorf("migration %q nests StatementBegin", name))
			}
		case annotationStmtEnd:
			open--
			if open < 0 {
				return multierr.Append(errs, fmt.Errorf("migration %q has StatementEnd without StatementBegin", name))
			}
		}
	}
	if open != 0 {
		errs = multierr.Append(errs, fmt.Errorf("migration %q leaves a StatementBegin open", name))
	}
	return errs
}
