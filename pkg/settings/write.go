package settings

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func (v VoiceAvailability) flagString() string {
	b := make([]byte, PlatformCount)
	for i, f := range v.Flags {
		b[i] = f.digit()
	}
	return string(b)
}

// Write serializes the file in the format Parse reads.
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s%t\n", verboseDebugMarker, f.VerboseDebug)
	for _, v := range f.Voices {
		fmt.Fprintf(bw, "export:{id=%s, flags=%s}\n", v.ID, v.flagString())
	}

	return bw.Flush()
}

// Save writes the file to path, creating parent directories.
func (f *File) Save(path string) error {
	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}

	err = f.Write(out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}
