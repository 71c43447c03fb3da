package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"runtime"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/kirsle/configdir"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/servo-mc/servo/internal/logger"
)

// Config holds the settings shared by every servo command.
type Config struct {
	// RegistryURL is the base URL of the build registry API.
	RegistryURL string `yaml:"registry_url"`
	// JavaPath is the runtime used to launch server artifacts.
	JavaPath string `yaml:"java_path"`
	// HTTPAddress is the listen address of the REST API.
	HTTPAddress string `yaml:"http_address"`
	// GRPCAddress is the listen address of the gRPC API.
	GRPCAddress string `yaml:"grpc_address"`
	// LogLevel is the minimum level of emitted log entries.
	LogLevel string `yaml:"log_level"`
	// ConfigDir holds per-server configuration documents.
	ConfigDir string `yaml:"config_dir"`
	// CacheDir holds downloaded artifacts and the cache index.
	CacheDir string `yaml:"cache_dir"`
	// DataDir holds per-server working directories.
	DataDir string `yaml:"data_dir"`
}

const (
	// AppName names the per-user configuration and cache folders.
	AppName = "servo"

	// DefaultConfigFilename is the default filename for servo settings.
	DefaultConfigFilename = "servo.yaml"

	// DefaultRegistryURL is the public PaperMC v1 API.
	DefaultRegistryURL = "https://papermc.io/api/v1"

	// DefaultJavaPath is resolved through PATH at launch time.
	DefaultJavaPath = "java"

	// DefaultHTTPAddress is the default REST listen address.
	DefaultHTTPAddress = ":8080"

	// DefaultGRPCAddress is the default gRPC listen address.
	DefaultGRPCAddress = ":9090"

	// DefaultFilePermissions is used for documents written by servo.
	DefaultFilePermissions = 0o600

	// DefaultDirPermissions is used for directories created by servo.
	DefaultDirPermissions = 0o755
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errRegistryRequired is returned when the registry URL is empty.
	errRegistryRequired = errors.New("registry url must be provided")
	// errUnknownLogLevel is returned for log levels zap does not know.
	errUnknownLogLevel = errors.New("unknown log level")
	// errDirRequired is returned when a directory root is empty after defaults.
	errDirRequired = errors.New("directory must be provided")
)

// envOverrides maps environment variables to the settings they override.
func envOverrides(cfg *Config) map[string]*string {
	return map[string]*string{
		"SERVO_REGISTRY_URL": &cfg.RegistryURL,
		"SERVO_JAVA_PATH":    &cfg.JavaPath,
		"SERVO_HTTP_ADDRESS": &cfg.HTTPAddress,
		"SERVO_GRPC_ADDRESS": &cfg.GRPCAddress,
		"SERVO_LOG_LEVEL":    &cfg.LogLevel,
		"SERVO_CONFIG_DIR":   &cfg.ConfigDir,
		"SERVO_CACHE_DIR":    &cfg.CacheDir,
		"SERVO_DATA_DIR":     &cfg.DataDir,
	}
}

// DefaultConfigPath returns the per-user location of the settings document.
func DefaultConfigPath() string {
	return configdir.LocalConfig(AppName, DefaultConfigFilename)
}

// Default returns settings populated with platform defaults.
func Default() *Config {
	return &Config{
		RegistryURL: DefaultRegistryURL,
		JavaPath:    DefaultJavaPath,
		HTTPAddress: DefaultHTTPAddress,
		GRPCAddress: DefaultGRPCAddress,
		LogLevel:    "info",
		ConfigDir:   configdir.LocalConfig(AppName),
		CacheDir:    configdir.LocalCache(AppName),
		DataDir:     defaultDataDir(),
	}
}

// Load reads settings from path, applies environment overrides and fills defaults.
// A missing settings file is not an error: servo works with defaults alone.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	// .env is optional; only a malformed one is reported.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := new(Config)

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	for name, field := range envOverrides(cfg) {
		if value, ok := os.LookupEnv(name); ok && value != "" {
			*field = value
		}
	}

	if err = mergo.Merge(cfg, Default()); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err = cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes settings to the provided path, creating its directory.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(path), DefaultDirPermissions); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.RegistryURL == "" {
		return errRegistryRequired
	}

	if _, err := url.ParseRequestURI(cfg.RegistryURL); err != nil {
		return fmt.Errorf("invalid registry url: %w", err)
	}

	for name, address := range map[string]string{"http": cfg.HTTPAddress, "grpc": cfg.GRPCAddress} {
		if address == "" {
			continue
		}

		if _, _, err := net.SplitHostPort(address); err != nil {
			return fmt.Errorf("invalid %s address: %w", name, err)
		}
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}

	for name, dir := range map[string]string{"config": cfg.ConfigDir, "cache": cfg.CacheDir, "data": cfg.DataDir} {
		if dir == "" {
			return fmt.Errorf("%s: %w", name, errDirRequired)
		}
	}

	return nil
}

// Dirs returns the directory roots described by the settings.
func (c *Config) Dirs() Dirs {
	return Dirs{
		Config: c.ConfigDir,
		Cache:  c.CacheDir,
		Data:   c.DataDir,
	}
}

// expandPaths resolves a leading ~ in every directory setting.
func (c *Config) expandPaths() error {
	for _, dir := range []*string{&c.ConfigDir, &c.CacheDir, &c.DataDir, &c.JavaPath} {
		expanded, err := homedir.Expand(*dir)
		if err != nil {
			return fmt.Errorf("expand %q: %w", *dir, err)
		}

		*dir = expanded
	}

	return nil
}

// defaultDataDir follows the XDG data convention on Linux and keeps server
// data next to the configuration elsewhere.
func defaultDataDir() string {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName)
		}

		if home, err := homedir.Dir(); err == nil {
			return filepath.Join(home, ".local", "share", AppName)
		}
	}

	return configdir.LocalConfig(AppName, "data")
}
