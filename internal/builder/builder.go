package builder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"

	"github.com/toastate/voicestage/internal/helpers"
	"github.com/toastate/voicestage/internal/tlogger"
	"github.com/toastate/voicestage/pkg/manifest"
	"github.com/toastate/voicestage/pkg/settings"
	"github.com/toastate/voicestage/pkg/staging"
	"github.com/toastate/voicestage/pkg/voices"
)

// Init is idempotent, multiple calls will only initialize the builder once
func (b *Builder) Init() error {
	if b.initialized {
		return nil
	}

	platform, err := settings.ParsePlatform(b.platformName)
	if err != nil {
		return err
	}
	b.platform = platform

	pc, ok := b.conf.Platforms[platform.String()]
	if !ok {
		return fmt.Errorf("platform %s is not configured", platform)
	}
	b.platformConf = pc

	if pc.VoiceRoot == "" {
		return fmt.Errorf("platform %s has no voice_root", platform)
	}

	b.duplicates, err = settings.ParseDuplicatePolicy(b.conf.Duplicates)
	if err != nil {
		return err
	}

	b.fileType, err = staging.ParseFileType(pc.FileType)
	if err != nil {
		return fmt.Errorf("platform %s: %w", platform, err)
	}

	b.settingsFile = b.conf.Path(b.conf.SettingsFile)
	b.voiceRoot = b.conf.Path(pc.VoiceRoot)
	b.stageDir = filepath.Join(b.conf.Path(b.conf.StageDir), platform.String())

	b.initialized = true
	return nil
}

// Build runs the platform build step. Any error aborts the step.
func (b *Builder) Build(opts ...*BuilderOpts) (*Result, error) {
	if len(opts) > 0 {
		b.opts = opts[0]
	}
	if b.opts == nil {
		b.opts = &BuilderOpts{}
	}

	err := b.Init()
	if err != nil {
		return nil, err
	}

	tlogger.Info("msg", "Building started", "platform", b.platform)
	defer tlogger.Info("msg", "Building finished", "platform", b.platform)

	res := &Result{Platform: b.platform.String(), Voices: []string{}, Entries: []staging.Entry{}}

	file, err := settings.Load(b.settingsFile)
	if err != nil {
		tlogger.Error("msg", "Failed to load settings", "path", b.settingsFile, "err", err)
		return nil, err
	}
	if file != nil {
		tlogger.Debug("msg", "Settings loaded", "path", b.settingsFile, "voices", len(file.Voices))
		if file.VerboseDebug {
			tlogger.Debug("msg", "Settings dump", "settings", spew.Sdump(file))
		}
	}

	sel, err := voices.Select(b.voiceRoot, file, b.platform, voices.WithDuplicatePolicy(b.duplicates))
	if err != nil {
		tlogger.Error("msg", "Failed to select voices", "path", b.voiceRoot, "err", err)
		return nil, err
	}

	if sel == nil {
		tlogger.Warn("msg", "No settings file, no voice is staged", "path", b.settingsFile)
	} else {
		res.Configured = true
		res.Voices = sel.Dirs
		for _, id := range sel.Unmatched {
			tlogger.Debug("msg", "Voice not used on platform", "voice", id, "platform", b.platform)
		}

		entries, err := staging.Collect(sel.Dirs, b.collectOptions())
		if err != nil {
			tlogger.Error("msg", "Failed to collect voice files", "err", err)
			return nil, err
		}
		res.Entries = entries

		tlogger.Info("msg", "Voices selected", "platform", b.platform, "voices", len(sel.Dirs), "files", len(entries))
	}

	if b.platformConf.Stage && !b.opts.DryRun {
		res.Copied, err = b.stage(res.Entries)
		if err != nil {
			return nil, err
		}
	}

	if m := b.platformConf.Manifest; m != nil {
		binaries := make([]string, len(m.Binaries))
		for i, dir := range m.Binaries {
			binaries[i] = b.conf.Path(dir)
		}

		res.Manifest, err = manifest.Generate(b.conf.Path(m.Template), binaries, b.manifestOptions())
		if err != nil {
			tlogger.Error("msg", "Failed to generate manifest", "template", m.Template, "err", err)
			return nil, err
		}
		tlogger.Info("msg", "Manifest generated", "path", res.Manifest)
	}

	if !b.opts.DryRun {
		err = helpers.WriteJsonFile(filepath.Join(b.stageDir, planFile), res)
		if err != nil {
			tlogger.Error("msg", "Failed to write plan", "path", b.stageDir, "err", err)
			return nil, err
		}
	}

	return res, nil
}

func (b *Builder) collectOptions() staging.Options {
	opts := staging.DefaultOptions()
	opts.Type = b.fileType
	opts.Exclude = b.conf.Exclude
	if b.platformConf.Stage {
		opts.Rewrite = &staging.RewriteRule{In: b.voiceRoot, Out: b.stageDir}
	}
	return opts
}

// stage clears the platform stage directory and copies entries into it.
func (b *Builder) stage(entries []staging.Entry) (int, error) {
	err := os.RemoveAll(b.stageDir)
	if err != nil {
		tlogger.Error("msg", "Failed to remove stage folder", "path", b.stageDir, "err", err)
		return 0, err
	}
	err = os.MkdirAll(b.stageDir, 0755)
	if err != nil {
		tlogger.Error("msg", "Failed to create stage folder", "path", b.stageDir, "err", err)
		return 0, err
	}

	n, err := staging.Materialize(entries)
	if err != nil {
		tlogger.Error("msg", "Failed to stage files", "path", b.stageDir, "err", err)
		return n, err
	}
	tlogger.Debug("msg", "Files staged", "path", b.stageDir, "count", n)
	return n, nil
}

// BuildAll builds every named platform in order, stopping at the first error.
func BuildAll(builders []*Builder, opts ...*BuilderOpts) ([]*Result, error) {
	results := make([]*Result, 0, len(builders))
	for _, b := range builders {
		res, err := b.Build(opts...)
		if err != nil {
			return results, fmt.Errorf("%s: %w", b.platformName, err)
		}
		results = append(results, res)
	}
	return results, nil
}
