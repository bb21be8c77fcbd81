// Package voices matches the on-disk voice asset tree against settings
// records.
//
// The tree is laid out as <root>/<vendor>/<voice>/; only those two levels are
// meaningful, anything deeper is payload. Each <vendor>/<voice> leaf gets the
// id settings.VoiceID(vendor, voice) and is selected when a record with that
// exact id is Used for the requested platform.
package voices

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/toastate/voicestage/pkg/settings"
)

var ErrMissingDirectory = errors.New("voice root directory not found")

// Selection is the outcome of Select for one platform.
type Selection struct {
	Platform settings.Platform

	// Dirs holds matched leaf directories in tree order. A leaf appears once
	// per matching record, so duplicate ids under the union policy repeat it.
	Dirs []string

	// Unmatched holds ids of leaves that no Used record selected.
	Unmatched []string
}

type options struct {
	duplicates settings.DuplicatePolicy
}

type Option func(*options)

// WithDuplicatePolicy sets how records sharing an id are matched. The default
// is settings.DuplicatesUnion.
func WithDuplicatePolicy(p settings.DuplicatePolicy) Option {
	return func(o *options) {
		o.duplicates = p
	}
}

// Select returns the leaf directories of root whose voice is Used on platform.
// When file is nil (no settings file), Select returns a nil Selection and no
// error. A missing root is an error only if some record is Used on platform.
func Select(root string, file *settings.File, platform settings.Platform, opts ...Option) (*Selection, error) {
	if !platform.Valid() {
		return nil, fmt.Errorf("%w: %s", settings.ErrUnknownPlatform, platform)
	}
	if file == nil {
		return nil, nil
	}

	o := options{duplicates: settings.DuplicatesUnion}
	for _, opt := range opts {
		opt(&o)
	}

	records, err := file.Resolve(o.duplicates)
	if err != nil {
		return nil, err
	}

	sel := &Selection{Platform: platform, Dirs: []string{}}

	leaves, err := Leaves(root)
	if err != nil {
		// an asset set that is not installed is fine while nothing uses it
		if errors.Is(err, ErrMissingDirectory) && !anyUsed(records, platform) {
			return sel, nil
		}
		return nil, err
	}

	for _, leaf := range leaves {
		matched := false
		for _, r := range records {
			if r.ID == leaf.ID && r.UsedFor(platform) {
				sel.Dirs = append(sel.Dirs, leaf.Path)
				matched = true
			}
		}
		if !matched {
			sel.Unmatched = append(sel.Unmatched, leaf.ID)
		}
	}

	return sel, nil
}

func anyUsed(records []settings.VoiceAvailability, platform settings.Platform) bool {
	for _, r := range records {
		if r.UsedFor(platform) {
			return true
		}
	}
	return false
}

// Leaf is a <vendor>/<voice> directory of the asset tree.
type Leaf struct {
	Path string
	ID   string
}

// Leaves lists the second-level directories of root in name order.
func Leaves(root string) ([]Leaf, error) {
	vendors, err := subdirs(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingDirectory, root)
		}
		return nil, err
	}

	var leaves []Leaf
	for _, vendor := range vendors {
		vendorDir := filepath.Join(root, vendor)
		voiceNames, err := subdirs(vendorDir)
		if err != nil {
			return nil, err
		}
		for _, voice := range voiceNames {
			leaves = append(leaves, Leaf{
				Path: filepath.Join(vendorDir, voice),
				ID:   settings.VoiceID(vendor, voice),
			})
		}
	}

	return leaves, nil
}

// subdirs returns the names of the directories directly inside dir, sorted.
func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if isDir(dir, e) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func isDir(parent string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(filepath.Join(parent, e.Name()))
	return err == nil && fi.IsDir()
}
