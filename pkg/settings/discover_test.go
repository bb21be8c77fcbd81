package settings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoiceID(t *testing.T) {
	assert.Equal(t, "Acme Jane", VoiceID("acme", "jane"))
	assert.Equal(t, "Acme Jane", VoiceID("Acme", "Jane"))
	assert.Equal(t, "McVoice X", VoiceID("mcVoice", "x"))
	assert.Equal(t, "Éva Ñu", VoiceID("éva", "ñu"))
	assert.Equal(t, " Jane", VoiceID("", "jane"))
}

const sampleVTPath = `[engines]
packname acme_jane_setup_engine
packname vt_ryan_setup_engine
packname vt_ryan_setup_engine
something else
`

func TestDiscoverEngines(t *testing.T) {
	ids, err := DiscoverEngines(strings.NewReader(sampleVTPath))
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Jane", "Vt Ryan"}, ids)
}

func TestDiscoverEnginesFile_Missing(t *testing.T) {
	ids, err := DiscoverEnginesFile(t.TempDir() + "/vtpath.ini")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPreliminary(t *testing.T) {
	got := Preliminary([]Discovery{
		{Platforms: []Platform{WinX64, LinuxX64}, IDs: []string{"Acme Jane", "Vt Ryan"}},
		{Platforms: []Platform{Android}, IDs: []string{"Acme Jane"}},
	})

	require.Len(t, got, 2)
	assert.Equal(t, "Acme Jane", got[0].ID)
	assert.Equal(t, "2220000", got[0].flagString())
	assert.Equal(t, "Vt Ryan", got[1].ID)
	assert.Equal(t, "2200000", got[1].flagString())
}

func TestSynchronize(t *testing.T) {
	current := &File{
		VerboseDebug: true,
		Voices: []VoiceAvailability{
			{ID: "Vt Ryan", Flags: [PlatformCount]Flag{Unused, Used, Used}},
			{ID: "Gone Voice", Flags: [PlatformCount]Flag{Used}},
		},
	}
	discovered := []VoiceAvailability{
		{ID: "Vt Ryan", Flags: [PlatformCount]Flag{Used, Used}},
		{ID: "Acme Jane", Flags: [PlatformCount]Flag{Unavailable, Unavailable, Used}},
	}

	got := Synchronize(current, discovered)

	assert.True(t, got.VerboseDebug)
	require.Len(t, got.Voices, 2)
	assert.Equal(t, "Acme Jane", got.Voices[0].ID)
	assert.Equal(t, "0020000", got.Voices[0].flagString())

	// the user's choice on winx64 is kept; android is no longer available
	assert.Equal(t, "Vt Ryan", got.Voices[1].ID)
	assert.Equal(t, "1200000", got.Voices[1].flagString())

	// the input slice is not modified
	assert.Equal(t, Used, discovered[0].Flags[WinX64])
}

func TestSynchronize_NoCurrent(t *testing.T) {
	got := Synchronize(nil, []VoiceAvailability{{ID: "B B"}, {ID: "A A"}})
	require.Len(t, got.Voices, 2)
	assert.Equal(t, "A A", got.Voices[0].ID)
	assert.False(t, got.VerboseDebug)
}
