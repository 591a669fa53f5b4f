package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"bytebpe/internal/pkg/bytebpe/preprocess"
	"bytebpe/internal/pkg/bytebpe/store"
)

type Config struct {
	VocabSize          int    `mapstructure:"vocab_size"`
	StoreDriver        string `mapstructure:"store_driver"`
	StorePath          string `mapstructure:"store_path"`
	Normalize          string `mapstructure:"normalize"`
	CollapseWhitespace bool   `mapstructure:"collapse_whitespace"`
	CacheSize          int    `mapstructure:"cache_size"`
	Workers            int    `mapstructure:"parallel_workers"`
	MinFrequency       int    `mapstructure:"min_frequency"`
	LogLevel           string `mapstructure:"log_level"`
	LogFile            string `mapstructure:"log_file"`
}

// flagKeys maps flag names to config keys. Flags missing from a flag set are
// skipped so every command can share Load.
var flagKeys = map[string]string{
	"vocab-size":          "vocab_size",
	"store-driver":        "store_driver",
	"model":               "store_path",
	"normalize":           "normalize",
	"collapse-whitespace": "collapse_whitespace",
	"cache-size":          "cache_size",
	"workers":             "parallel_workers",
	"min-frequency":       "min_frequency",
	"log-level":           "log_level",
	"log-file":            "log_file",
}

func RegisterGlobalFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "Path to config file")
	fs.StringP("model", "m", "", "Path of the stored model")
	fs.String("store-driver", "", "Model storage driver (bin, cbor, json, sqlite)")
	fs.String("normalize", "", "Unicode normalization applied to input text (none, nfc, nfkc)")
	fs.Bool("collapse-whitespace", false, "Collapse whitespace runs to a single space before tokenizing")
	fs.Int("cache-size", 0, "Number of cached encode results (0 disables)")
	fs.StringP("log-level", "l", "", "Log level (debug, info, warn, error)")
	fs.String("log-file", "", "Log file path")
}

func RegisterTrainFlags(fs *pflag.FlagSet) {
	fs.IntP("vocab-size", "n", 0, "Target vocabulary size (must be greater than 256)")
	fs.IntP("workers", "w", 0, "Goroutines used to count pairs (0 or 1 counts sequentially)")
	fs.Int("min-frequency", 0, "Stop once the most frequent pair occurs fewer times than this")
}

func RegisterInputFlags(fs *pflag.FlagSet) {
	fs.StringP("text", "t", "", "Input text (use '-' to read from stdin)")
	fs.StringP("file", "f", "", "Read input from file")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("vocab_size", 512)
	v.SetDefault("store_driver", "json")
	v.SetDefault("store_path", "models/bytebpe.json")
	v.SetDefault("normalize", string(preprocess.ModeNone))
	v.SetDefault("collapse_whitespace", false)
	v.SetDefault("cache_size", 1024)
	v.SetDefault("parallel_workers", 0)
	v.SetDefault("min_frequency", 1)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
}

// Load resolves the configuration from defaults, the config file, the
// environment and the flags in fs, later sources winning.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, err
		}
	}

	configFile, _ := fs.GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("bytebpe.cfg")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "bytebpe"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix("BYTEBPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if !store.IsRegistered(c.StoreDriver) {
		return fmt.Errorf("unknown store driver %q (available: %s)", c.StoreDriver, strings.Join(store.Drivers(), ", "))
	}
	if c.StorePath == "" {
		return fmt.Errorf("store path is required")
	}
	if _, err := preprocess.ParseMode(c.Normalize); err != nil {
		return err
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size must not be negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("parallel workers must not be negative")
	}
	return nil
}

// Preprocessor returns the text preprocessor described by c.
func (c *Config) Preprocessor() *preprocess.Preprocessor {
	mode, _ := preprocess.ParseMode(c.Normalize)
	return preprocess.NewPreprocessor(mode, c.CollapseWhitespace)
}

// ReadText returns the command input from --file, --text ('-' reads stdin)
// or the positional arguments, in that order.
func ReadText(fs *pflag.FlagSet, args []string, stdin io.Reader) (string, error) {
	if file, _ := fs.GetString("file"); file != "" {
		content, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read text file: %w", err)
		}
		return string(content), nil
	}

	text, _ := fs.GetString("text")
	if text == "-" {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return string(content), nil
	}
	if text != "" {
		return text, nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	return "", fmt.Errorf("text is required (use -t, -f, or provide as argument)")
}
