package builder

import (
	"github.com/toastate/voicestage/pkg/config"
	"github.com/toastate/voicestage/pkg/manifest"
	"github.com/toastate/voicestage/pkg/settings"
	"github.com/toastate/voicestage/pkg/staging"
)

const planFile = "plan.json"

// Builder runs the build step of one platform: voice selection, dependency
// collection, optional staging copy and manifest generation.
type Builder struct {
	opts *BuilderOpts

	initialized bool

	conf         *config.Configuration
	platformName string
	platform     settings.Platform
	platformConf config.PlatformConfiguration

	settingsFile string
	voiceRoot    string
	stageDir     string

	duplicates settings.DuplicatePolicy
	fileType   staging.FileType
}

type BuilderOpts struct {
	// DryRun computes the result without copying files or writing the plan.
	// The manifest is still generated.
	DryRun bool
}

func NewBuilder(conf *config.Configuration, platform string) *Builder {
	return &Builder{
		conf:         conf,
		platformName: platform,
	}
}

func (b *Builder) Platform() settings.Platform {
	return b.platform
}

// StageDir is where this platform's staged voices and plan are written.
func (b *Builder) StageDir() string {
	return b.stageDir
}

// WatchPaths lists the inputs whose changes invalidate a build.
func (b *Builder) WatchPaths() []string {
	paths := []string{b.settingsFile, b.voiceRoot}
	if m := b.platformConf.Manifest; m != nil {
		paths = append(paths, b.conf.Path(m.Template))
		for _, dir := range m.Binaries {
			paths = append(paths, b.conf.Path(dir))
		}
	}
	return paths
}

// Outputs lists what a build writes, so a watcher can leave them out.
func (b *Builder) Outputs() []string {
	outputs := []string{b.stageDir}
	if m := b.platformConf.Manifest; m != nil {
		outputs = append(outputs, manifest.GeneratedPath(b.conf.Path(m.Template)))
	}
	return outputs
}

// Result is what a build step hands back to the packaging step.
type Result struct {
	Platform string `json:"platform"`

	// Configured is false when no settings file exists; no voice is staged
	// in that case.
	Configured bool     `json:"configured"`
	Voices     []string `json:"voices"`

	Entries  []staging.Entry `json:"entries"`
	Copied   int             `json:"copied"`
	Manifest string          `json:"manifest,omitempty"`
}

func (b *Builder) manifestOptions() manifest.Options {
	opts := manifest.DefaultOptions()
	if m := b.platformConf.Manifest; m != nil {
		opts.Minify = m.Minify
	}
	return opts
}
