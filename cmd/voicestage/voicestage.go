package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/toastate/voicestage/internal/builder"
	"github.com/toastate/voicestage/internal/helpers"
	"github.com/toastate/voicestage/internal/tlogger"
	"github.com/toastate/voicestage/internal/watcher"
	"github.com/toastate/voicestage/pkg/config"
	"github.com/toastate/voicestage/pkg/manifest"
	"github.com/toastate/voicestage/pkg/settings"
	"github.com/toastate/voicestage/pkg/staging"
	"github.com/toastate/voicestage/pkg/voices"
)

var stdout io.Writer = os.Stdout

var CLI struct {
	Select   CommandSelect   `cmd:"" help:"Lists the voice directories used on a platform."`
	Collect  CommandCollect  `cmd:"" help:"Lists the files to stage from directories."`
	Manifest CommandManifest `cmd:"" help:"Generates a platform manifest from a template."`
	Build    CommandBuild    `cmd:"" aliases:"b" help:"Runs the build step of platforms."`
	Sync     CommandSync     `cmd:"" help:"Rescans installed voice engines and updates the settings file."`
	Watch    CommandWatch    `cmd:"" aliases:"w" help:"Rebuilds platforms when settings or voices change."`

	ConfigFile string `short:"c" help:"configuration file path (optional)"`
}

type CommandSelect struct {
	Platform string `arg:"" help:"Target platform (winx64, linuxx64, android, ps4, ps5, xsx, switch)."`

	SettingsFile string `help:"Settings file, defaults to the configured one."`
	VoiceRoot    string `help:"Voice asset root, defaults to the platform's configured one."`

	Verbose int `short:"v" help:"Print verbose output." type:"counter"`
}

type CommandCollect struct {
	Dirs []string `arg:"" help:"Directories to collect."`

	In        string   `help:"Source root to rewrite (requires --out)."`
	Out       string   `help:"Destination root replacing --in."`
	Type      string   `help:"Staged file type (NonUFS, UFS, DebugNonUFS, SystemNonUFS)." default:"NonUFS"`
	Recursive bool     `negatable:"" default:"true" help:"Descend into subdirectories."`
	Exclude   []string `help:"Glob patterns of files to leave out."`

	Verbose int `short:"v" help:"Print verbose output." type:"counter"`
}

type CommandManifest struct {
	Template string   `arg:"" help:"Manifest template."`
	Binaries []string `arg:"" help:"Directories holding the libraries to load."`

	Sentinel string `help:"Template token the load statements are inserted before." default:"*VTLIBS*"`
	Infix    string `help:"File name part selecting the libraries." default:"libvt_"`
	Minify   bool   `help:"Minify the generated XML."`

	Verbose int `short:"v" help:"Print verbose output." type:"counter"`
}

type CommandBuild struct {
	Platforms []string `arg:"" optional:"" help:"Platforms to build, defaults to every configured platform."`
	DryRun    bool     `help:"Only print the plan, copy nothing."`

	Verbose int `short:"v" help:"Print verbose output." type:"counter"`
}

type CommandSync struct {
	Verbose int `short:"v" help:"Print verbose output." type:"counter"`
}

type CommandWatch struct {
	Platforms []string `arg:"" optional:"" help:"Platforms to build, defaults to every configured platform."`

	Verbose int `short:"v" help:"Print verbose output." type:"counter"`
}

func main() {
	ctx := kong.Parse(&CLI, kong.UsageOnError())

	err := config.Init(CLI.ConfigFile)
	tlogger.FatalIf(err)

	err = ctx.Run(ctx)
	tlogger.FatalIf(err)
}

func applyVerbose(v int) {
	switch v {
	case 0:
		tlogger.ApplyLogLevel("info")
	case 1:
		tlogger.ApplyLogLevel("debug")
	default:
		tlogger.ApplyLogLevel("all")
	}
}

func printJson(v any) error {
	data, err := helpers.MarshalJson(v)
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}

func (r *CommandSelect) Run(ctx *kong.Context) error {
	applyVerbose(r.Verbose)

	platform, err := settings.ParsePlatform(r.Platform)
	if err != nil {
		return err
	}

	if r.SettingsFile == "" {
		r.SettingsFile = config.Config.Path(config.Config.SettingsFile)
	}
	if r.VoiceRoot == "" {
		pc, ok := config.Config.Platforms[platform.String()]
		if !ok {
			return fmt.Errorf("platform %s is not configured, use --voice-root", platform)
		}
		r.VoiceRoot = config.Config.Path(pc.VoiceRoot)
	}

	policy, err := settings.ParseDuplicatePolicy(config.Config.Duplicates)
	if err != nil {
		return err
	}

	file, err := settings.Load(r.SettingsFile)
	if err != nil {
		return err
	}

	sel, err := voices.Select(r.VoiceRoot, file, platform, voices.WithDuplicatePolicy(policy))
	if err != nil {
		return err
	}
	if sel == nil {
		tlogger.Warn("msg", "No settings file, nothing to select", "path", r.SettingsFile)
		return nil
	}

	for _, dir := range sel.Dirs {
		fmt.Fprintln(stdout, dir)
	}
	return nil
}

func (r *CommandCollect) Run(ctx *kong.Context) error {
	applyVerbose(r.Verbose)

	ft, err := staging.ParseFileType(r.Type)
	if err != nil {
		return err
	}

	opts := staging.DefaultOptions()
	opts.Type = ft
	opts.Recursive = r.Recursive
	opts.Exclude = r.Exclude
	if r.In != "" || r.Out != "" {
		if r.In == "" || r.Out == "" {
			return fmt.Errorf("--in and --out go together")
		}
		opts.Rewrite = &staging.RewriteRule{In: r.In, Out: r.Out}
	}

	entries, err := staging.Collect(r.Dirs, opts)
	if err != nil {
		return err
	}
	return printJson(entries)
}

func (r *CommandManifest) Run(ctx *kong.Context) error {
	applyVerbose(r.Verbose)

	opts := manifest.DefaultOptions()
	opts.Sentinel = r.Sentinel
	opts.Infix = r.Infix
	opts.Minify = r.Minify

	generated, err := manifest.Generate(r.Template, r.Binaries, opts)
	if err != nil {
		return err
	}

	// Print so the path can be consumed by the calling build script
	fmt.Fprintln(stdout, generated)
	return nil
}

func builders(platforms []string) []*builder.Builder {
	if len(platforms) == 0 {
		platforms = config.Config.PlatformNames()
	}

	out := make([]*builder.Builder, len(platforms))
	for i, p := range platforms {
		out[i] = builder.NewBuilder(config.Config, p)
	}
	return out
}

func (r *CommandBuild) Run(ctx *kong.Context) error {
	applyVerbose(r.Verbose)

	results, err := builder.BuildAll(builders(r.Platforms), &builder.BuilderOpts{DryRun: r.DryRun})
	if err != nil {
		return err
	}
	if r.DryRun {
		return printJson(results)
	}
	return nil
}

func (r *CommandSync) Run(ctx *kong.Context) error {
	applyVerbose(r.Verbose)

	_, err := builder.Sync(config.Config)
	return err
}

func (r *CommandWatch) Run(ctx *kong.Context) error {
	applyVerbose(r.Verbose)

	bs := builders(r.Platforms)

	var paths, outputs []string
	for _, b := range bs {
		err := b.Init()
		if err != nil {
			return err
		}
		paths = append(paths, b.WatchPaths()...)
		outputs = append(outputs, b.Outputs()...)
	}

	_, err := builder.BuildAll(bs)
	if err != nil {
		tlogger.Error("msg", "Build failed, waiting for changes", "err", err)
	}

	w, err := watcher.StartWatcher(paths, outputs...)
	if err != nil {
		return err
	}
	defer w.Close()

	updates := w.Changes()
	for {
		_, ok := <-updates
		if !ok {
			return nil
		}
		if !debounce(updates, time.Millisecond*500) {
			return nil
		}

		_, err = builder.BuildAll(bs)
		if err != nil {
			tlogger.Error("msg", "Build failed, waiting for changes", "err", err)
		}
	}
}

// debounce drains updates until none arrives for wait. It returns false once
// updates is closed.
func debounce(updates <-chan string, wait time.Duration) bool {
	for {
		select {
		case _, ok := <-updates:
			if !ok {
				return false
			}
		case <-time.After(wait):
			return true
		}
	}
}
