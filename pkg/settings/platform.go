package settings

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownPlatform = errors.New("unknown platform")

// Platform is one of the seven targets a voice can ship on. The numeric value
// is the position of the platform's flag in a settings record.
type Platform int

const (
	WinX64 Platform = iota
	LinuxX64
	Android
	PS4
	PS5
	XSX
	Switch

	PlatformCount = 7
)

var platformTokens = [PlatformCount]string{
	"winx64",
	"linuxx64",
	"android",
	"ps4",
	"ps5",
	"xsx",
	"switch",
}

// Platforms returns every platform in canonical flag order.
func Platforms() []Platform {
	p := make([]Platform, PlatformCount)
	for i := range p {
		p[i] = Platform(i)
	}
	return p
}

func (p Platform) Valid() bool {
	return p >= 0 && p < PlatformCount
}

func (p Platform) String() string {
	if !p.Valid() {
		return fmt.Sprintf("platform(%d)", int(p))
	}
	return platformTokens[p]
}

// ParsePlatform maps a platform token such as "android" to its Platform.
func ParsePlatform(token string) (Platform, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	for i, v := range platformTokens {
		if v == t {
			return Platform(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPlatform, token)
}

// Flag tells whether a voice ships on a platform.
type Flag int

const (
	Unavailable Flag = iota
	Unused
	Used
)

func (f Flag) String() string {
	switch f {
	case Unavailable:
		return "unavailable"
	case Unused:
		return "unused"
	case Used:
		return "used"
	}
	return fmt.Sprintf("flag(%d)", int(f))
}

func flagFromByte(c byte) (Flag, bool) {
	switch c {
	case '0':
		return Unavailable, true
	case '1':
		return Unused, true
	case '2':
		return Used, true
	}
	return Unavailable, false
}

func (f Flag) digit() byte {
	return byte('0' + f)
}
