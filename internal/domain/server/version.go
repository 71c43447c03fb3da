package server

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Version components named by ParseError.
const (
	ComponentMajor = "major"
	ComponentMinor = "minor"
	ComponentPatch = "patch"
	ComponentBuild = "build"
)

const (
	// componentSeparator separates the Minecraft version components.
	componentSeparator = "."
	// buildSeparator separates the build number from the Minecraft version.
	buildSeparator = "-"
)

// ErrParse is wrapped by every version parsing failure.
var ErrParse = errors.New("parse version")

// ParseError names the version component that failed to parse.
type ParseError struct {
	// Component is one of the Component* constants.
	Component string
	// Value is the offending text, empty when the component is missing.
	Value string
	// Input is the whole text that was parsed.
	Input string
	// Reason describes what is wrong with Value.
	Reason string
}

// Error implements error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %q: %s %q: %s", ErrParse, e.Input, e.Component, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrParse.
func (e *ParseError) Unwrap() error {
	return ErrParse
}

// MinecraftVersion is a game release: major, minor and an optional patch.
// 1.12 and 1.12.0 are distinct values.
type MinecraftVersion struct {
	Major int
	Minor int
	Patch *int
}

// NewMinecraftVersion returns a version without a patch component.
func NewMinecraftVersion(major, minor int) MinecraftVersion {
	return MinecraftVersion{Major: major, Minor: minor}
}

// WithPatch returns a copy of v with the patch component set.
func (v MinecraftVersion) WithPatch(patch int) MinecraftVersion {
	v.Patch = &patch

	return v
}

// String formats v as MAJOR.MINOR[.PATCH].
func (v MinecraftVersion) String() string {
	text := strconv.Itoa(v.Major) + componentSeparator + strconv.Itoa(v.Minor)
	if v.Patch != nil {
		text += componentSeparator + strconv.Itoa(*v.Patch)
	}

	return text
}

// Compare orders versions by major, minor, then patch.
// A missing patch sorts below any present patch.
func (v MinecraftVersion) Compare(other MinecraftVersion) int {
	if c := cmp.Compare(v.Major, other.Major); c != 0 {
		return c
	}

	if c := cmp.Compare(v.Minor, other.Minor); c != 0 {
		return c
	}

	return compareOptional(v.Patch, other.Patch)
}

// Equal reports whether both versions have identical components.
func (v MinecraftVersion) Equal(other MinecraftVersion) bool {
	return v.Compare(other) == 0
}

// ServerVersion is a Minecraft version plus an optional registry build.
type ServerVersion struct {
	Minecraft MinecraftVersion
	Build     *int
}

// WithBuild returns a copy of v with the build set.
func (v ServerVersion) WithBuild(build int) ServerVersion {
	v.Build = &build

	return v
}

// String formats v as MAJOR.MINOR[.PATCH][-BUILD].
func (v ServerVersion) String() string {
	text := v.Minecraft.String()
	if v.Build != nil {
		text += buildSeparator + strconv.Itoa(*v.Build)
	}

	return text
}

// Equal reports whether both versions have identical components.
func (v ServerVersion) Equal(other ServerVersion) bool {
	return v.Minecraft.Equal(other.Minecraft) && compareOptional(v.Build, other.Build) == 0
}

// MarshalText encodes v in its canonical form.
func (v ServerVersion) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes the canonical form.
func (v *ServerVersion) UnmarshalText(text []byte) error {
	parsed, err := ParseServerVersion(string(text))
	if err != nil {
		return err
	}

	*v = parsed

	return nil
}

// ParseServerVersion parses MAJOR.MINOR[.PATCH][-BUILD].
// Everything after the first "-" is the build, so "1.12-4" has no patch.
func ParseServerVersion(text string) (ServerVersion, error) {
	mcText, buildText, hasBuild := strings.Cut(text, buildSeparator)

	mc, err := parseMinecraft(mcText, text)
	if err != nil {
		return ServerVersion{}, err
	}

	version := ServerVersion{Minecraft: mc}

	if hasBuild {
		build, err := parseComponent(ComponentBuild, buildText, text)
		if err != nil {
			return ServerVersion{}, err
		}

		version.Build = &build
	}

	return version, nil
}

// ParseMinecraftVersion parses MAJOR.MINOR[.PATCH] and rejects a build suffix.
func ParseMinecraftVersion(text string) (MinecraftVersion, error) {
	mcText, buildText, hasBuild := strings.Cut(text, buildSeparator)
	if hasBuild {
		return MinecraftVersion{}, &ParseError{
			Component: ComponentBuild,
			Value:     buildText,
			Input:     text,
			Reason:    "not allowed here",
		}
	}

	return parseMinecraft(mcText, text)
}

func parseMinecraft(text, input string) (MinecraftVersion, error) {
	parts := strings.Split(text, componentSeparator)

	if len(parts) > 3 {
		return MinecraftVersion{}, &ParseError{
			Component: ComponentPatch,
			Value:     strings.Join(parts[2:], componentSeparator),
			Input:     input,
			Reason:    "too many components",
		}
	}

	major, err := parseComponent(ComponentMajor, parts[0], input)
	if err != nil {
		return MinecraftVersion{}, err
	}

	if len(parts) < 2 {
		return MinecraftVersion{}, &ParseError{
			Component: ComponentMinor,
			Input:     input,
			Reason:    "missing",
		}
	}

	minor, err := parseComponent(ComponentMinor, parts[1], input)
	if err != nil {
		return MinecraftVersion{}, err
	}

	version := NewMinecraftVersion(major, minor)

	if len(parts) == 3 {
		patch, err := parseComponent(ComponentPatch, parts[2], input)
		if err != nil {
			return MinecraftVersion{}, err
		}

		version.Patch = &patch
	}

	return version, nil
}

// parseComponent accepts plain decimal digits only.
func parseComponent(component, value, input string) (int, error) {
	if value == "" {
		return 0, &ParseError{Component: component, Input: input, Reason: "missing"}
	}

	for _, r := range value {
		if r < '0' || r > '9' {
			return 0, &ParseError{Component: component, Value: value, Input: input, Reason: "not a number"}
		}
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &ParseError{Component: component, Value: value, Input: input, Reason: "out of range"}
	}

	return n, nil
}

func compareOptional(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return cmp.Compare(*a, *b)
	}
}
