package glsl

import (
	"fmt"
	"strings"
)

// Revision changes whenever the same program and options render to
// different text. Render caches key on it.
const Revision = 1

// Profile selects the GLSL dialect written after the version number.
type Profile uint8

const (
	ProfileCore Profile = iota
	ProfileES
	ProfileCompatibility
)

func (p Profile) String() string {
	switch p {
	case ProfileCore:
		return "core"
	case ProfileES:
		return "es"
	case ProfileCompatibility:
		return "compatibility"
	default:
		return "unknown"
	}
}

// ParseProfile accepts core, es and compatibility.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "core":
		return ProfileCore, nil
	case "es":
		return ProfileES, nil
	case "compatibility", "compat":
		return ProfileCompatibility, nil
	default:
		return ProfileCore, fmt.Errorf("unknown profile %q", s)
	}
}

// Options control rendering.
type Options struct {
	// Version is the number written in the #version line; 0 picks 450 for
	// desktop profiles and 300 for ES.
	Version int
	Profile Profile
	// IndentWidth is the number of spaces per level; 0 means 4.
	IndentWidth int
	UseTabs     bool
	// Precision is the default float and int precision for ES; empty means
	// highp. Ignored for desktop profiles.
	Precision string
}

func (o Options) withDefaults() Options {
	if o.Version == 0 {
		if o.Profile == ProfileES {
			o.Version = 300
		} else {
			o.Version = 450
		}
	}
	if o.IndentWidth == 0 {
		o.IndentWidth = 4
	}
	if o.Profile == ProfileES && o.Precision == "" {
		o.Precision = "highp"
	}
	return o
}

var (
	desktopVersions = map[int]bool{
		110: true, 120: true, 130: true, 140: true, 150: true, 330: true,
		400: true, 410: true, 420: true, 430: true, 440: true, 450: true, 460: true,
	}
	esVersions = map[int]bool{100: true, 300: true, 310: true, 320: true}
)

// Validate reports option combinations no GLSL compiler accepts.
func (o Options) Validate() error {
	o = o.withDefaults()
	switch o.Profile {
	case ProfileES:
		if !esVersions[o.Version] {
			return fmt.Errorf("glsl: version %d is not a GLSL ES version", o.Version)
		}
	case ProfileCore, ProfileCompatibility:
		if !desktopVersions[o.Version] {
			return fmt.Errorf("glsl: version %d is not a desktop GLSL version", o.Version)
		}
	default:
		return fmt.Errorf("glsl: unknown profile %d", o.Profile)
	}
	switch o.Precision {
	case "", "lowp", "mediump", "highp":
	default:
		return fmt.Errorf("glsl: unknown precision %q", o.Precision)
	}
	if o.IndentWidth < 0 {
		return fmt.Errorf("glsl: negative indent width %d", o.IndentWidth)
	}
	return nil
}

// versionLine renders the #version directive.
func (o Options) versionLine() string {
	line := fmt.Sprintf("#version %d", o.Version)
	switch {
	case o.Profile == ProfileES && o.Version >= 300:
		line += " es"
	case o.Profile == ProfileCore && o.Version >= 150:
		line += " core"
	case o.Profile == ProfileCompatibility && o.Version >= 150:
		line += " compatibility"
	}
	return line
}
