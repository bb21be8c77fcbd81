package settings

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

var packnameRegexp = regexp.MustCompile(`packname (.+)_(.+)_setup_engine`)

// VoiceID builds the settings id of a voice from its vendor and voice name:
// the first letter of each part is upper-cased, the rest is kept as is.
func VoiceID(vendor, voice string) string {
	return upperFirst(vendor) + " " + upperFirst(voice)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// DiscoverEngines lists the voice ids of the engines declared in a vtpath.ini.
func DiscoverEngines(r io.Reader) ([]string, error) {
	var ids []string
	seen := map[string]struct{}{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m := packnameRegexp.FindStringSubmatch(scanner.Text())
		if len(m) != 3 {
			continue
		}
		id := VoiceID(m[1], m[2])
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids, scanner.Err()
}

// DiscoverEnginesFile is DiscoverEngines on a file. A missing file yields no
// engines.
func DiscoverEnginesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	return DiscoverEngines(f)
}

// Discovery is the set of engines found in one asset set, along with the
// platforms that asset set serves.
type Discovery struct {
	Platforms []Platform
	IDs       []string
}

// Preliminary turns discoveries into records where each voice is Used on the
// platforms its asset set serves. A voice found in several asset sets gets
// the union of their platforms.
func Preliminary(discoveries []Discovery) []VoiceAvailability {
	var out []VoiceAvailability
	index := map[string]int{}

	for _, d := range discoveries {
		var template [PlatformCount]Flag
		for _, p := range d.Platforms {
			if p.Valid() {
				template[p] = Used
			}
		}

		for _, id := range d.IDs {
			i, ok := index[id]
			if !ok {
				index[id] = len(out)
				out = append(out, VoiceAvailability{ID: id, Flags: template})
				continue
			}
			for p := range out[i].Flags {
				if out[i].Flags[p] == Unavailable {
					out[i].Flags[p] = template[p]
				}
			}
		}
	}

	return out
}

// Synchronize merges freshly discovered records with the current settings.
// The discovered records decide which voices exist and where they are
// available; a choice recorded in current survives wherever both sides agree
// the voice is available. The result is sorted by id.
func Synchronize(current *File, discovered []VoiceAvailability) *File {
	out := &File{Voices: make([]VoiceAvailability, len(discovered))}
	copy(out.Voices, discovered)

	if current != nil {
		out.VerboseDebug = current.VerboseDebug

		for i := range out.Voices {
			for _, c := range current.Voices {
				if c.ID != out.Voices[i].ID {
					continue
				}
				for p := range out.Voices[i].Flags {
					if out.Voices[i].Flags[p] != Unavailable && c.Flags[p] != Unavailable {
						out.Voices[i].Flags[p] = c.Flags[p]
					}
				}
			}
		}
	}

	sort.SliceStable(out.Voices, func(i, j int) bool {
		return strings.Compare(out.Voices[i].ID, out.Voices[j].ID) < 0
	})

	return out
}
