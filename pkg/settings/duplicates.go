package settings

import (
	"errors"
	"fmt"
	"strings"
)

var ErrDuplicateID = errors.New("duplicate voice id")

// DuplicatePolicy decides what happens when several records share an id.
type DuplicatePolicy int

const (
	// DuplicatesUnion keeps every record; each one is matched on its own.
	DuplicatesUnion DuplicatePolicy = iota
	DuplicatesFirst
	DuplicatesLast
	DuplicatesReject
)

var duplicatePolicyNames = map[DuplicatePolicy]string{
	DuplicatesUnion:  "union",
	DuplicatesFirst:  "first",
	DuplicatesLast:   "last",
	DuplicatesReject: "reject",
}

func (p DuplicatePolicy) String() string {
	if s, ok := duplicatePolicyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("duplicates(%d)", int(p))
}

// ParseDuplicatePolicy accepts "union", "first", "last" or "reject". An empty
// string selects union.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DuplicatesUnion, nil
	}
	for k, v := range duplicatePolicyNames {
		if v == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown duplicate policy %q", s)
}

// Resolve applies policy to the records of f, preserving file order. For
// DuplicatesLast the surviving record takes the position of its last
// occurrence.
func (f *File) Resolve(policy DuplicatePolicy) ([]VoiceAvailability, error) {
	if f == nil {
		return nil, nil
	}

	switch policy {
	case DuplicatesUnion:
		out := make([]VoiceAvailability, len(f.Voices))
		copy(out, f.Voices)
		return out, nil

	case DuplicatesFirst:
		seen := make(map[string]struct{}, len(f.Voices))
		out := make([]VoiceAvailability, 0, len(f.Voices))
		for _, v := range f.Voices {
			if _, ok := seen[v.ID]; ok {
				continue
			}
			seen[v.ID] = struct{}{}
			out = append(out, v)
		}
		return out, nil

	case DuplicatesLast:
		last := make(map[string]int, len(f.Voices))
		for i, v := range f.Voices {
			last[v.ID] = i
		}
		out := make([]VoiceAvailability, 0, len(last))
		for i, v := range f.Voices {
			if last[v.ID] == i {
				out = append(out, v)
			}
		}
		return out, nil

	case DuplicatesReject:
		seen := make(map[string]struct{}, len(f.Voices))
		for _, v := range f.Voices {
			if _, ok := seen[v.ID]; ok {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateID, v.ID)
			}
			seen[v.ID] = struct{}{}
		}
		out := make([]VoiceAvailability, len(f.Voices))
		copy(out, f.Voices)
		return out, nil
	}

	return nil, fmt.Errorf("unknown duplicate policy %d", int(policy))
}
