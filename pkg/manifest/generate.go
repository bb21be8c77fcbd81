// Package manifest generates the platform plugin manifest that tells the host
// loader which voice engine libraries to load at startup.
//
// The generator reads a template, derives one load statement per library
// found in the binaries directories, and inserts the statements right before
// the first template line holding the sentinel token.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/xml"
)

var (
	ErrMissingTemplate  = errors.New("manifest template not found")
	ErrMissingSentinel  = errors.New("manifest template has no sentinel line")
	ErrMissingDirectory = errors.New("binaries directory not found")
	ErrInvalidStatement = errors.New("load statement must hold exactly one %s verb")
)

const generatedSuffix = "_generated"

type Options struct {
	// Infix selects library files: only names containing it are loaded.
	Infix string

	// TrimPrefix and TrimSuffix are the number of characters dropped from the
	// start and end of the name, counted from Infix, to get the short name.
	TrimPrefix int
	TrimSuffix int

	// Sentinel marks the template line the statements are inserted before.
	Sentinel string

	// Statement is a fmt format with a single %s for the library short name.
	Statement string

	// Minify passes the generated document through the XML minifier.
	Minify bool
}

// DefaultOptions match the Android UPL template: libvt_foo.so is loaded with
// System.loadLibrary("vt_foo");
func DefaultOptions() Options {
	return Options{
		Infix:      "libvt_",
		TrimPrefix: len("lib"),
		TrimSuffix: len(".so"),
		Sentinel:   "*VTLIBS*",
		Statement:  `System.loadLibrary("%s");`,
	}
}

// LibraryName returns the short name of a library file, or false when the
// file name does not hold the infix or is too short to trim.
func LibraryName(file string, opts Options) (string, bool) {
	base := filepath.Base(file)
	k := strings.Index(base, opts.Infix)
	if opts.Infix == "" || k < 0 {
		return "", false
	}

	tail := base[k:]
	if len(tail) <= opts.TrimPrefix+opts.TrimSuffix {
		return "", false
	}
	return tail[opts.TrimPrefix : len(tail)-opts.TrimSuffix], true
}

// LoadStatements builds the load statements for the libraries found directly
// inside dirs, in directory order then file name order. Identical statements
// are kept once.
func LoadStatements(dirs []string, opts Options) ([]string, error) {
	if err := checkStatement(opts.Statement); err != nil {
		return nil, err
	}

	statements := []string{}
	seen := map[string]struct{}{}

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrMissingDirectory, dir)
			}
			return nil, err
		}

		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name, ok := LibraryName(e.Name(), opts)
			if !ok {
				continue
			}
			s := fmt.Sprintf(opts.Statement, name)
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			statements = append(statements, s)
		}
	}

	return statements, nil
}

func checkStatement(format string) error {
	verbs := strings.ReplaceAll(format, "%%", "")
	if strings.Count(verbs, "%") != 1 || !strings.Contains(verbs, "%s") {
		return fmt.Errorf("%w: %q", ErrInvalidStatement, format)
	}
	return nil
}

// Splice returns lines with statements inserted before the first line that
// contains sentinel.
func Splice(lines, statements []string, sentinel string) ([]string, error) {
	at := -1
	for i, l := range lines {
		if strings.Contains(l, sentinel) {
			at = i
			break
		}
	}
	if sentinel == "" || at < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingSentinel, sentinel)
	}

	out := make([]string, 0, len(lines)+len(statements))
	out = append(out, lines[:at]...)
	out = append(out, statements...)
	out = append(out, lines[at:]...)
	return out, nil
}

// GeneratedPath is the sibling file a template is generated into:
// Plugin_UPL.xml becomes Plugin_UPL_generated.xml.
func GeneratedPath(templatePath string) string {
	ext := filepath.Ext(templatePath)
	return strings.TrimSuffix(templatePath, ext) + generatedSuffix + ext
}

// Generate writes the manifest generated from templatePath and the libraries
// of binaryDirs, and returns the path it was written to.
func Generate(templatePath string, binaryDirs []string, opts Options) (string, error) {
	data, err := os.ReadFile(templatePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrMissingTemplate, templatePath)
		}
		return "", err
	}

	statements, err := LoadStatements(binaryDirs, opts)
	if err != nil {
		return "", err
	}

	lines, err := Splice(splitLines(data), statements, opts.Sentinel)
	if err != nil {
		return "", fmt.Errorf("%s: %w", templatePath, err)
	}

	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	out := buf.Bytes()

	if opts.Minify {
		out, err = minifyXML(out)
		if err != nil {
			return "", fmt.Errorf("minifying %s: %w", templatePath, err)
		}
	}

	generated := GeneratedPath(templatePath)
	err = os.WriteFile(generated, out, 0644)
	if err != nil {
		return "", err
	}
	return generated, nil
}

var windowCRregexp = regexp.MustCompile(`\r?\n`)

func splitLines(b []byte) []string {
	s := windowCRregexp.ReplaceAllString(string(b), "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func minifyXML(b []byte) ([]byte, error) {
	m := minify.New()
	m.AddFunc("text/xml", xml.Minify)
	return m.Bytes("text/xml", b)
}
