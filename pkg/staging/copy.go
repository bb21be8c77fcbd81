package staging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Materialize copies every entry whose destination differs from its source
// and returns the number of files copied.
func Materialize(entries []Entry) (int, error) {
	copied := 0
	for _, e := range entries {
		if filepath.Clean(e.Source) == filepath.Clean(e.Destination) {
			continue
		}

		err := os.MkdirAll(filepath.Dir(e.Destination), 0755)
		if err != nil {
			return copied, err
		}

		_, err = copyFile(e.Source, e.Destination)
		if err != nil {
			return copied, fmt.Errorf("staging %s: %w", e.Source, err)
		}
		copied++
	}
	return copied, nil
}

func copyFile(src, dst string) (int64, error) {
	sourceFileStat, err := os.Stat(src)
	if err != nil {
		return 0, err
	}

	if !sourceFileStat.Mode().IsRegular() {
		return 0, fmt.Errorf("%s is not a regular file", src)
	}

	source, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer source.Close()

	destination, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, sourceFileStat.Mode().Perm())
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(destination, source)
	if cerr := destination.Close(); err == nil {
		err = cerr
	}
	return n, err
}
