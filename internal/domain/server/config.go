package server

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidName is returned for server names unusable as file and directory keys.
var ErrInvalidName = errors.New("invalid server name")

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Config is the persisted description of one server.
type Config struct {
	// Name is unique and keys the config document and the data directory.
	Name string
	// Version pins the Minecraft version; the build is informational.
	Version ServerVersion
	// Kind selects the artifact flavor.
	Kind Kind
	// ExtraJavaArgs are placed before -jar.
	ExtraJavaArgs []string
	// ExtraServerArgs are appended after the kind arguments.
	ExtraServerArgs []string
}

// configDocument is the YAML shape of Config.
type configDocument struct {
	Name            string   `yaml:"name"`
	Version         string   `yaml:"version"`
	Kind            string   `yaml:"kind"`
	ExtraJavaArgs   []string `yaml:"extra_java_args"`
	ExtraServerArgs []string `yaml:"extra_server_args"`
}

// ValidateName checks that name can be used as a file and directory key.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return nil
}

// Key returns the cache key the server launches from.
func (c *Config) Key() CacheKey {
	return CacheKey{Kind: c.Kind, Minecraft: c.Version.Minecraft}
}

// MarshalYAML implements yaml.Marshaler.
func (c *Config) MarshalYAML() (any, error) {
	if c.Kind == nil {
		return nil, fmt.Errorf("%w: not set", ErrUnknownKind)
	}

	return configDocument{
		Name:            c.Name,
		Version:         c.Version.String(),
		Kind:            c.Kind.Name(),
		ExtraJavaArgs:   nonNil(c.ExtraJavaArgs),
		ExtraServerArgs: nonNil(c.ExtraServerArgs),
	}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	var doc configDocument
	if err := node.Decode(&doc); err != nil {
		return err
	}

	if doc.Kind == "" {
		doc.Kind = DefaultKind
	}

	kind, err := ParseKind(doc.Kind)
	if err != nil {
		return err
	}

	version, err := ParseServerVersion(doc.Version)
	if err != nil {
		return err
	}

	*c = Config{
		Name:            doc.Name,
		Version:         version,
		Kind:            kind,
		ExtraJavaArgs:   nonNil(doc.ExtraJavaArgs),
		ExtraServerArgs: nonNil(doc.ExtraServerArgs),
	}

	return nil
}

// CacheKey identifies one cached artifact and its metadata entry.
type CacheKey struct {
	Kind      Kind
	Minecraft MinecraftVersion
}

const keySeparator = "@"

// String returns the metadata key "<kind>@<minecraft-version>".
func (k CacheKey) String() string {
	return k.Kind.Name() + keySeparator + k.Minecraft.String()
}

// Filename is the artifact file name inside the cache directory.
func (k CacheKey) Filename() string {
	return k.Kind.Name() + "-" + k.Minecraft.String() + ".jar"
}

// Compare orders keys by kind name, then Minecraft version.
func (k CacheKey) Compare(other CacheKey) int {
	if c := strings.Compare(k.Kind.Name(), other.Kind.Name()); c != 0 {
		return c
	}

	return k.Minecraft.Compare(other.Minecraft)
}

// ParseCacheKey parses "<kind>@<minecraft-version>".
func ParseCacheKey(text string) (CacheKey, error) {
	kindName, versionText, ok := strings.Cut(text, keySeparator)
	if !ok {
		return CacheKey{}, fmt.Errorf("%w: cache key %q has no %q", ErrParse, text, keySeparator)
	}

	kind, err := ParseKind(kindName)
	if err != nil {
		return CacheKey{}, err
	}

	mc, err := ParseMinecraftVersion(versionText)
	if err != nil {
		return CacheKey{}, err
	}

	return CacheKey{Kind: kind, Minecraft: mc}, nil
}

// CachedArtifact is a cached file together with the version it holds.
type CachedArtifact struct {
	Version ServerVersion
	Path    string
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}

	return list
}
