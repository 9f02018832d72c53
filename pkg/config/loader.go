package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ConfigPathEnv overrides the config file location when no -c flag is given.
const ConfigPathEnv = "INTERACTBOT_CONFIG_FILE"

// EnvPrefix prefixes every environment override, e.g. INTERACTBOT_SERVER_PORT.
const EnvPrefix = "INTERACTBOT"

// Loader handles configuration loading with Viper.
type Loader struct {
	viper       *viper.Viper
	dotEnvFiles []string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetConfigName("config")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".interactbot"))
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{viper: v, dotEnvFiles: []string{".env"}}
}

// SetDotEnvFiles replaces the list of .env files consulted by Load.
func (l *Loader) SetDotEnvFiles(paths ...string) {
	l.dotEnvFiles = paths
}

// Load reads defaults, the config file, .env files and the environment, in
// increasing order of precedence. A missing config file is not an error
// unless configPath names it explicitly.
func (l *Loader) Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	for key, value := range settings(cfg) {
		l.viper.SetDefault(key, value)
	}
	for key, names := range envNames() {
		if err := l.viper.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	if strings.TrimSpace(configPath) == "" {
		configPath = strings.TrimSpace(os.Getenv(ConfigPathEnv))
	}
	if configPath != "" {
		l.viper.SetConfigFile(configPath)
	}

	if err := l.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := l.applyDotEnv(); err != nil {
		return nil, err
	}

	if err := l.viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Server.Path = "/" + strings.TrimLeft(strings.TrimSpace(cfg.Server.Path), "/")
	return cfg, nil
}

// applyDotEnv feeds .env values to viper for keys the real environment leaves unset.
// The process environment itself is not modified.
func (l *Loader) applyDotEnv() error {
	values := map[string]string{}
	for _, path := range l.dotEnvFiles {
		read, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for k, v := range read {
			if _, exists := values[k]; !exists {
				values[k] = v
			}
		}
	}
	if len(values) == 0 {
		return nil
	}

	for key, names := range envNames() {
		if envSet(names) {
			continue
		}
		for _, name := range names {
			if v, ok := values[name]; ok {
				l.viper.Set(key, v)
				break
			}
		}
	}
	return nil
}

// ConfigFileUsed returns the path of the loaded config file, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.viper.ConfigFileUsed()
}

// envNames maps each config key to the environment variables that override it.
func envNames() map[string][]string {
	out := make(map[string][]string)
	for key := range settings(DefaultConfig()) {
		names := []string{EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}
		if legacy, ok := legacyEnv[key]; ok {
			names = append(names, legacy)
		}
		out[key] = names
	}
	return out
}

func envSet(names []string) bool {
	for _, name := range names {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// EnvVars returns every recognised environment variable name, sorted.
func EnvVars() []string {
	var out []string
	for _, names := range envNames() {
		out = append(out, names...)
	}
	sort.Strings(out)
	return out
}
