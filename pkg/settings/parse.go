package settings

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	exportMarker       = "export"
	verboseDebugMarker = "verboseDebug:"

	maxLineLength = 1 << 20
)

var ErrMalformedConfiguration = errors.New("malformed configuration")

// ParseError reports the settings line that could not be parsed.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: line %d: %s", ErrMalformedConfiguration, e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformedConfiguration
}

// VoiceAvailability is one export record of the settings file.
type VoiceAvailability struct {
	ID    string
	Flags [PlatformCount]Flag
}

func (v VoiceAvailability) Flag(p Platform) Flag {
	if !p.Valid() {
		return Unavailable
	}
	return v.Flags[p]
}

// UsedFor reports whether the voice must be staged for p.
func (v VoiceAvailability) UsedFor(p Platform) bool {
	return v.Flag(p) == Used
}

// File is a parsed settings file. A nil *File stands for "no configuration".
type File struct {
	VerboseDebug bool
	Voices       []VoiceAvailability
}

// Load reads and parses the settings file at path. A missing file is not an
// error: Load returns a nil *File so callers can tell "no filtering
// configured" apart from "configured but nothing selected".
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not open settings file %s: %w", path, err)
	}
	defer f.Close()

	file, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// Parse reads settings text. Any malformed export line aborts the whole parse.
func Parse(r io.Reader) (*File, error) {
	file := &File{Voices: []VoiceAvailability{}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.Contains(line, exportMarker) {
			v, err := parseRecord(line)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Reason: err.Error()}
			}
			file.Voices = append(file.Voices, v)
			continue
		}

		if rest, ok := cutAfter(line, verboseDebugMarker); ok {
			file.VerboseDebug = strings.TrimSpace(rest) == "true"
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &ParseError{Line: lineNo + 1, Reason: fmt.Sprintf("line longer than %d bytes", maxLineLength)}
		}
		return nil, err
	}

	return file, nil
}

func cutAfter(s, marker string) (string, bool) {
	i := strings.Index(s, marker)
	if i < 0 {
		return "", false
	}
	return s[i+len(marker):], true
}

// parseRecord extracts {id=<id>, flags=<digits>} from an export line.
func parseRecord(line string) (VoiceAvailability, error) {
	var v VoiceAvailability

	body, err := braceBody(line)
	if err != nil {
		return v, err
	}

	fields := strings.Split(body, ",")
	if len(fields) != 2 {
		return v, fmt.Errorf("expected 2 fields in record, got %d", len(fields))
	}

	id, err := fieldValue(fields[0])
	if err != nil {
		return v, err
	}
	if id == "" {
		return v, errors.New("empty voice id")
	}

	flags, err := fieldValue(fields[1])
	if err != nil {
		return v, err
	}
	if len(flags) != PlatformCount {
		return v, fmt.Errorf("flags %q: expected %d characters, got %d", flags, PlatformCount, len(flags))
	}
	for i := 0; i < PlatformCount; i++ {
		f, ok := flagFromByte(flags[i])
		if !ok {
			return v, fmt.Errorf("flags %q: invalid flag %q at position %d", flags, flags[i], i)
		}
		v.Flags[i] = f
	}

	v.ID = id
	return v, nil
}

func braceBody(line string) (string, error) {
	open := strings.IndexByte(line, '{')
	if open < 0 {
		return "", errors.New("missing '{'")
	}
	rest := line[open+1:]

	end := strings.IndexByte(rest, '}')
	if end < 0 {
		return "", errors.New("missing '}'")
	}
	if strings.IndexByte(rest[:end], '{') >= 0 {
		return "", errors.New("nested braces are not supported")
	}
	return rest[:end], nil
}

func fieldValue(field string) (string, error) {
	key, value, ok := strings.Cut(field, "=")
	if !ok {
		return "", fmt.Errorf("field %q has no '='", strings.TrimSpace(field))
	}
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("field %q has no key", strings.TrimSpace(field))
	}
	return strings.TrimSpace(value), nil
}
