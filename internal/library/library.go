// Package library loads contract bundles by name from a directory of JSON files.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"contractview/internal/contract"
)

const extension = ".json"

var ErrNotFound = errors.New("contract not found")

// LoadError reports a contract file that exists but could not be read or parsed.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load contract %q: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type Library struct {
	dir string
}

func New(dir string) *Library {
	return &Library{dir: dir}
}

func (l *Library) Dir() string {
	return l.dir
}

// List returns the names of every bundle in the directory, sorted. Files whose
// name Load would reject, such as dot-files left by editors, are skipped.
func (l *Library) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read contracts dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := NameFromPath(entry.Name())
		if !ok || ValidateName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Load reads and parses the bundle stored as <name>.json.
func (l *Library) Load(name string) (contract.Data, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(l.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, &LoadError{Name: name, Err: err}
	}
	data, err := contract.Parse(raw)
	if err != nil {
		return nil, &LoadError{Name: name, Err: err}
	}
	return data, nil
}

// LoadRaw returns the file bytes without parsing them.
func (l *Library) LoadRaw(name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(l.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, &LoadError{Name: name, Err: err}
	}
	return raw, nil
}

func (l *Library) path(name string) string {
	return filepath.Join(l.dir, name+extension)
}

// ValidateName rejects names that could escape the directory.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || trimmed != name {
		return fmt.Errorf("%w: invalid name %q", ErrNotFound, name)
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: invalid name %q", ErrNotFound, name)
	}
	return nil
}

// NameFromPath returns the contract name for a bundle file path, or false when
// the path is not a bundle.
func NameFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, extension) || strings.HasPrefix(base, ".") {
		return "", false
	}
	return strings.TrimSuffix(base, extension), true
}
