package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "voicestage.yaml"

var Config = DefaultConfiguration()

// DefaultConfiguration mirrors the ReadSpeakerTTS plugin layout. Every
// platform has a voice root even when its asset set is not installed, so a
// sync keeps the console voices.
func DefaultConfiguration() *Configuration {
	winLinux := "Resources/ReadSpeaker/WinLinux"
	return &Configuration{
		PluginDir:    ".",
		SettingsFile: "Resources/TTSSettings.ini",
		StageDir:     "Staged",
		Duplicates:   "union",
		Platforms: map[string]PlatformConfiguration{
			"winx64": {
				VoiceRoot: winLinux,
				FileType:  "NonUFS",
			},
			"linuxx64": {
				VoiceRoot: winLinux,
				FileType:  "NonUFS",
			},
			"android": {
				VoiceRoot: "Resources/ReadSpeaker/Android",
				FileType:  "NonUFS",
				Manifest: &ManifestConfiguration{
					Template: "Source/ThirdParty/VTAPI/Platforms/Android/ReadSpeakerTTS_UPL.xml",
					Binaries: []string{
						"Source/ThirdParty/VTAPI/Platforms/Android/Binaries/arm64-v8a",
						"Source/ThirdParty/VTAPI/Platforms/Android/Binaries/armeabi-v7a",
					},
				},
			},
			"ps4":    {VoiceRoot: "Resources/ReadSpeaker/PS4", FileType: "NonUFS"},
			"ps5":    {VoiceRoot: "Resources/ReadSpeaker/PS5", FileType: "NonUFS"},
			"xsx":    {VoiceRoot: "Resources/ReadSpeaker/XSX", FileType: "NonUFS"},
			"switch": {VoiceRoot: "Resources/ReadSpeaker/Switch", FileType: "NonUFS"},
		},
	}
}

type Configuration struct {
	PluginDir    string   `yaml:"plugin_dir,omitempty"`
	SettingsFile string   `yaml:"settings_file,omitempty"`
	StageDir     string   `yaml:"stage_dir,omitempty"`
	Duplicates   string   `yaml:"duplicates,omitempty"`
	Exclude      []string `yaml:"exclude,omitempty"`

	Platforms map[string]PlatformConfiguration `yaml:"platforms,omitempty"`
}

type PlatformConfiguration struct {
	VoiceRoot string `yaml:"voice_root"`
	FileType  string `yaml:"file_type,omitempty"`

	// Stage copies the selected voices under StageDir/<platform> instead of
	// listing them in place.
	Stage bool `yaml:"stage,omitempty"`

	Manifest *ManifestConfiguration `yaml:"manifest,omitempty"`
}

type ManifestConfiguration struct {
	Template string   `yaml:"template"`
	Binaries []string `yaml:"binaries"`
	Minify   bool     `yaml:"minify,omitempty"`
}

// Init overlays the configuration file at configpath onto Config. A missing
// file keeps the defaults.
func Init(configpath string) error {
	if configpath == "" {
		configpath = DefaultConfigFile
	}

	_, err := os.Stat(configpath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("could not access configuration file %s: %v", configpath, err)
		}

		return nil
	}

	f, err := os.Open(configpath)
	if err != nil {
		return err
	}
	defer f.Close()

	err = yaml.NewDecoder(f).Decode(Config)
	if err != nil {
		return fmt.Errorf("could not decode configuration file %s: %w", configpath, err)
	}

	return nil
}

// Path resolves p against the plugin directory.
func (c *Configuration) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.PluginDir, filepath.FromSlash(p))
}

// PlatformNames lists the configured platforms in name order.
func (c *Configuration) PlatformNames() []string {
	names := make([]string, 0, len(c.Platforms))
	for k := range c.Platforms {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
