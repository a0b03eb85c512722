// /internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	CooldownBackendStorage = "storage"
	CooldownBackendMemory  = "memory"

	// MaxPrefixLength bounds both the global and per-guild prefixes.
	MaxPrefixLength = 5
)

var snowflake = regexp.MustCompile(`^\d{17,19}$`)

type Config struct {
	DiscordToken string   `env:"DISCORD_TOKEN"`
	GlobalPrefix string   `env:"GLOBAL_PREFIX" envDefault:"!"`
	Owner        string   `env:"OWNER"`
	Admins       []string `env:"ADMINS" envSeparator:","`
	Test         bool     `env:"TEST"`

	StoragePath string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile     string `env:"LOG_FILE"`

	AdminBypassDM   bool          `env:"ADMIN_BYPASS_DM"`
	IgnoreBots      bool          `env:"IGNORE_BOTS" envDefault:"true"`
	CooldownBackend string        `env:"COOLDOWN_BACKEND" envDefault:"storage"`
	CooldownSweep   time.Duration `env:"COOLDOWN_SWEEP" envDefault:"1m"`

	// EnvFile is the dotenv file that was loaded, if any.
	EnvFile string
}

// Load reads the optional dotenv files (".env" when none are given), then the
// process environment. A missing dotenv file is not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var loaded []string
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
		loaded = append(loaded, f)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.EnvFile = strings.Join(loaded, ",")
	cfg.Owner = strings.TrimSpace(cfg.Owner)
	cfg.Admins = Snowflakes(cfg.Admins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings shared by every binary.
func (c *Config) Validate() error {
	if c.GlobalPrefix == "" {
		return errors.New("validate config: GLOBAL_PREFIX is empty")
	}
	if len([]rune(c.GlobalPrefix)) > MaxPrefixLength {
		return fmt.Errorf("validate config: GLOBAL_PREFIX longer than %d characters", MaxPrefixLength)
	}
	switch c.CooldownBackend {
	case CooldownBackendStorage, CooldownBackendMemory:
	default:
		return fmt.Errorf("validate config: unknown COOLDOWN_BACKEND %q", c.CooldownBackend)
	}
	if c.CooldownSweep <= 0 {
		return errors.New("validate config: COOLDOWN_SWEEP must be positive")
	}
	return nil
}

// ValidateBot additionally requires the settings the Discord bot needs.
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DiscordToken == "" {
		return errors.New("validate config: DISCORD_TOKEN is not set")
	}
	return nil
}

// Snowflakes keeps the trimmed entries that look like Discord ids.
func Snowflakes(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if snowflake.MatchString(id) {
			out = append(out, id)
		}
	}
	return out
}
