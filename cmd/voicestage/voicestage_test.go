package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toastate/voicestage/pkg/config"
	"github.com/toastate/voicestage/pkg/staging"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func pluginConfig(t *testing.T) *config.Configuration {
	t.Helper()
	conf := config.DefaultConfiguration()
	conf.PluginDir = t.TempDir()

	prev := config.Config
	config.Config = conf
	t.Cleanup(func() { config.Config = prev })
	return conf
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestCollect_InAndOutGoTogether(t *testing.T) {
	captureStdout(t)

	cmd := &CommandCollect{Dirs: []string{t.TempDir()}, In: "/voices", Recursive: true}
	assert.Error(t, cmd.Run(nil))

	cmd = &CommandCollect{Dirs: []string{t.TempDir()}, Out: "/staged", Recursive: true}
	assert.Error(t, cmd.Run(nil))
}

func TestCollect_PrintsEntries(t *testing.T) {
	out := captureStdout(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Acme", "Jane", "jane.db"), "jane")

	parser, err := kong.New(&CLI)
	require.NoError(t, err)
	ctx, err := parser.Parse([]string{"collect", "--in", root, "--out", "/staged", "--type", "UFS", filepath.Join(root, "Acme")})
	require.NoError(t, err)
	require.NoError(t, ctx.Run(ctx))

	var entries []staging.Entry
	require.NoError(t, json.Unmarshal(out.Bytes(), &entries))
	assert.Equal(t, []staging.Entry{{
		Source:      filepath.Join(root, "Acme", "Jane", "jane.db"),
		Destination: filepath.Join("/staged", "Acme", "Jane", "jane.db"),
		Type:        staging.UFS,
	}}, entries)
}

func TestSelect_NoSettingsFilePrintsNothing(t *testing.T) {
	out := captureStdout(t)
	conf := pluginConfig(t)
	require.NoError(t, os.MkdirAll(conf.Path("Resources/ReadSpeaker/WinLinux/Acme/Jane"), 0755))

	require.NoError(t, (&CommandSelect{Platform: "winx64"}).Run(nil))
	assert.Empty(t, out.String())
}

func TestSelect_PrintsUsedVoices(t *testing.T) {
	out := captureStdout(t)
	conf := pluginConfig(t)
	writeFile(t, conf.Path(conf.SettingsFile), "export:{id=Acme Jane, flags=2000000}\nexport:{id=Vt Ryan, flags=1000000}\n")
	require.NoError(t, os.MkdirAll(conf.Path("Resources/ReadSpeaker/WinLinux/acme/jane"), 0755))
	require.NoError(t, os.MkdirAll(conf.Path("Resources/ReadSpeaker/WinLinux/vt/ryan"), 0755))

	require.NoError(t, (&CommandSelect{Platform: "WinX64"}).Run(nil))
	assert.Equal(t, conf.Path("Resources/ReadSpeaker/WinLinux/acme/jane")+"\n", out.String())
}

func TestSelect_UnknownPlatform(t *testing.T) {
	captureStdout(t)
	pluginConfig(t)

	assert.Error(t, (&CommandSelect{Platform: "dreamcast"}).Run(nil))
}

func TestManifest_PrintsGeneratedPath(t *testing.T) {
	out := captureStdout(t)
	root := t.TempDir()
	template := filepath.Join(root, "UPL.xml")
	writeFile(t, template, "*VTLIBS*\n")
	writeFile(t, filepath.Join(root, "arm64-v8a", "libvt_eng.so"), "")

	cmd := &CommandManifest{
		Template: template,
		Binaries: []string{filepath.Join(root, "arm64-v8a")},
		Sentinel: "*VTLIBS*",
		Infix:    "libvt_",
	}
	require.NoError(t, cmd.Run(nil))
	assert.Equal(t, filepath.Join(root, "UPL_generated.xml"), strings.TrimSpace(out.String()))
}

func TestDebounce(t *testing.T) {
	updates := make(chan string, 3)
	updates <- "a"
	updates <- "b"
	assert.True(t, debounce(updates, 10*time.Millisecond))
	assert.Empty(t, updates)

	updates <- "c"
	close(updates)
	done := make(chan bool)
	go func() { done <- debounce(updates, time.Hour) }()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("debounce kept waiting on a closed channel")
	}
}
