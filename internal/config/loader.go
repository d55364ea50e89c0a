package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Load reads .env (if present), the environment and args (usually
// os.Args[1:]), merges them and validates the result.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: loading .env: %w", err)
	}

	return newConfigBuilder().
		withFlags(args).
		withEnv().
		build()
}

type configBuilder struct {
	configs []*Config
	err     error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{configs: make([]*Config, 0, 2)}
}

// build merges the collected configs. Earlier configs win: mergo.Merge only
// fills fields that are still zero in the destination.
func (b *configBuilder) build() (*Config, error) {
	if b.err != nil {
		return nil, fmt.Errorf("config: building: %w", b.err)
	}

	cfg := new(Config)
	for _, c := range b.configs {
		if err := mergo.Merge(cfg, c); err != nil {
			return nil, fmt.Errorf("config: merging: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (b *configBuilder) withEnv() *configBuilder {
	envCfg := new(Config)
	if err := env.Parse(envCfg); err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("parsing env: %w", err))
		return b
	}
	b.configs = append(b.configs, envCfg)
	return b
}

func (b *configBuilder) withFlags(args []string) *configBuilder {
	flagCfg, err := parseFlags(args)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}
	b.configs = append(b.configs, flagCfg)
	return b
}

// parseFlags uses zero defaults so that flags which were not passed leave
// their fields empty and the environment value shows through after merging.
func parseFlags(args []string) (*Config, error) {
	cfg := new(Config)

	flags := flag.NewFlagSet("my-applications", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.IntVar(&cfg.Server.Port, "port", 0, "HTTP port")
	flags.StringVar(&cfg.DB.Driver, "db-driver", "", "database driver: sqlite or postgres")
	flags.StringVar(&cfg.DB.DSN, "db-dsn", "", "database DSN or sqlite file path")
	flags.StringVar(&cfg.AI.Provider, "ai-provider", "", "minutes summarizer: gemini or classic")
	flags.StringVar(&cfg.Transcribe.Provider, "transcribe-provider", "", "transcriber: whisper or none")
	flags.StringVar(&cfg.Storage.ArtifactDir, "artifact-dir", "", "directory for generated artifacts")
	flags.StringVar(&cfg.LogLevel, "log-level", "", "log level")

	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}
	return cfg, nil
}
