package builder

import (
	"path/filepath"

	"github.com/toastate/voicestage/internal/tlogger"
	"github.com/toastate/voicestage/pkg/config"
	"github.com/toastate/voicestage/pkg/settings"
)

const vtPathFile = "vtpath.ini"

// Discover scans the vtpath.ini of every configured voice root. Platforms
// sharing a voice root share its discovery.
func Discover(conf *config.Configuration) ([]settings.Discovery, error) {
	byRoot := map[string]*settings.Discovery{}
	var roots []string

	for _, name := range conf.PlatformNames() {
		platform, err := settings.ParsePlatform(name)
		if err != nil {
			return nil, err
		}
		root := conf.Path(conf.Platforms[name].VoiceRoot)
		if root == "" {
			continue
		}

		d, ok := byRoot[root]
		if !ok {
			d = &settings.Discovery{}
			byRoot[root] = d
			roots = append(roots, root)
		}
		d.Platforms = append(d.Platforms, platform)
	}

	out := make([]settings.Discovery, 0, len(roots))
	for _, root := range roots {
		path := filepath.Join(root, vtPathFile)
		ids, err := settings.DiscoverEnginesFile(path)
		if err != nil {
			return nil, err
		}
		tlogger.Debug("msg", "Engines discovered", "path", path, "engines", len(ids))

		d := byRoot[root]
		d.IDs = ids
		out = append(out, *d)
	}
	return out, nil
}

// Sync rescans the voice roots and rewrites the settings file, keeping the
// flags chosen for voices that are still installed.
func Sync(conf *config.Configuration) (*settings.File, error) {
	discoveries, err := Discover(conf)
	if err != nil {
		return nil, err
	}

	path := conf.Path(conf.SettingsFile)
	current, err := settings.Load(path)
	if err != nil {
		return nil, err
	}

	file := settings.Synchronize(current, settings.Preliminary(discoveries))

	err = file.Save(path)
	if err != nil {
		tlogger.Error("msg", "Failed to save settings", "path", path, "err", err)
		return nil, err
	}
	tlogger.Info("msg", "Settings synchronized", "path", path, "voices", len(file.Voices))
	return file, nil
}
