package staging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var ErrMissingDirectory = errors.New("dependency directory not found")

// FileType classifies a staged file for the packaging step.
type FileType int

const (
	NonUFS FileType = iota
	UFS
	DebugNonUFS
	SystemNonUFS
)

var fileTypeNames = [...]string{"NonUFS", "UFS", "DebugNonUFS", "SystemNonUFS"}

func (t FileType) String() string {
	if t < 0 || int(t) >= len(fileTypeNames) {
		return fmt.Sprintf("FileType(%d)", int(t))
	}
	return fileTypeNames[t]
}

func (t FileType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *FileType) UnmarshalText(b []byte) error {
	v, err := ParseFileType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseFileType is case-insensitive. An empty string selects NonUFS.
func ParseFileType(s string) (FileType, error) {
	if s == "" {
		return NonUFS, nil
	}
	for i, v := range fileTypeNames {
		if strings.EqualFold(v, s) {
			return FileType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown staged file type %q", s)
}

// Entry is one file to ship with a build.
type Entry struct {
	Source      string   `json:"source"`
	Destination string   `json:"destination"`
	Type        FileType `json:"type"`
}

// RewriteRule stages files found under In at the same relative path under Out.
type RewriteRule struct {
	In  string
	Out string
}

func (r *RewriteRule) apply(source string) (string, error) {
	rel, err := filepath.Rel(r.In, source)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside rewrite root %s", source, r.In)
	}
	return filepath.Join(r.Out, rel), nil
}

type Options struct {
	Type FileType

	// Recursive descends into subdirectories. Without it only the files
	// directly inside each directory are collected.
	Recursive bool

	// Rewrite, when set, maps every source path to its staged destination.
	// Without it the destination is the source path.
	Rewrite *RewriteRule

	// Exclude holds doublestar patterns matched against the slash-separated
	// path relative to the directory being collected.
	Exclude []string
}

func DefaultOptions() Options {
	return Options{Type: NonUFS, Recursive: true}
}

// Collect lists the files under dirs as staging entries, depth first, files
// of a directory before those of its subdirectories. Entries sharing a source
// path are reported once.
func Collect(dirs []string, opts Options) ([]Entry, error) {
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	entries := []Entry{}
	seen := map[string]struct{}{}

	for _, dir := range dirs {
		files, err := walkFiles(dir, opts.Recursive)
		if err != nil {
			return nil, err
		}

		for _, file := range files {
			if _, ok := seen[file]; ok {
				continue
			}
			seen[file] = struct{}{}

			if excluded(dir, file, opts.Exclude) {
				continue
			}

			dst := file
			if opts.Rewrite != nil {
				dst, err = opts.Rewrite.apply(file)
				if err != nil {
					return nil, err
				}
			}

			entries = append(entries, Entry{Source: file, Destination: dst, Type: opts.Type})
		}
	}

	return entries, nil
}

func excluded(dir, file string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	rel, err := filepath.Rel(dir, file)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// walkFiles returns the files below dir. Within a directory, its own files
// come before the files of its subdirectories. Symlinked directories are
// followed, each resolved directory is visited once.
func walkFiles(dir string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingDirectory, dir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	return walkTree(dir, recursive, map[string]struct{}{})
}

func walkTree(dir string, recursive bool, visited map[string]struct{}) ([]string, error) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, err
	}
	if _, ok := visited[resolved]; ok {
		return nil, nil
	}
	visited[resolved] = struct{}{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	var subdirs []string

	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if isDir(path, e) {
			if recursive {
				subdirs = append(subdirs, path)
			}
			continue
		}
		files = append(files, path)
	}

	for _, sub := range subdirs {
		subFiles, err := walkTree(sub, recursive, visited)
		if err != nil {
			return nil, err
		}
		files = append(files, subFiles...)
	}

	return files, nil
}

func isDir(path string, e fs.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
