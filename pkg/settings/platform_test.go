package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlatform(t *testing.T) {
	for _, p := range Platforms() {
		got, err := ParsePlatform(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	got, err := ParsePlatform(" Android ")
	require.NoError(t, err)
	assert.Equal(t, Android, got)

	_, err = ParsePlatform("dreamcast")
	assert.ErrorIs(t, err, ErrUnknownPlatform)
}

func TestPlatformOrder(t *testing.T) {
	assert.Equal(t, []string{"winx64", "linuxx64", "android", "ps4", "ps5", "xsx", "switch"}, func() []string {
		var out []string
		for _, p := range Platforms() {
			out = append(out, p.String())
		}
		return out
	}())
}

func TestFlagOutOfRangePlatform(t *testing.T) {
	v := VoiceAvailability{ID: "A B", Flags: [PlatformCount]Flag{2, 2, 2, 2, 2, 2, 2}}
	assert.False(t, v.UsedFor(Platform(42)))
	assert.Equal(t, "platform(42)", Platform(42).String())
}

func TestResolveDuplicates(t *testing.T) {
	f := &File{Voices: []VoiceAvailability{
		{ID: "Acme Jane", Flags: [PlatformCount]Flag{2}},
		{ID: "Vt Ryan", Flags: [PlatformCount]Flag{1}},
		{ID: "Acme Jane", Flags: [PlatformCount]Flag{1}},
	}}

	union, err := f.Resolve(DuplicatesUnion)
	require.NoError(t, err)
	assert.Len(t, union, 3)

	first, err := f.Resolve(DuplicatesFirst)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, Used, first[0].Flag(WinX64))

	last, err := f.Resolve(DuplicatesLast)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "Vt Ryan", last[0].ID)
	assert.Equal(t, "Acme Jane", last[1].ID)
	assert.Equal(t, Unused, last[1].Flag(WinX64))

	_, err = f.Resolve(DuplicatesReject)
	assert.ErrorIs(t, err, ErrDuplicateID)

	var none *File
	got, err := none.Resolve(DuplicatesReject)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseDuplicatePolicy(t *testing.T) {
	for _, name := range []string{"union", "first", "last", "reject"} {
		p, err := ParseDuplicatePolicy(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.String())
	}

	p, err := ParseDuplicatePolicy("")
	require.NoError(t, err)
	assert.Equal(t, DuplicatesUnion, p)

	_, err = ParseDuplicatePolicy("random")
	assert.Error(t, err)
}
