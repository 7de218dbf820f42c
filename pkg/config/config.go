package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	DEFAULT_REGION           = "us-west-2"
	DEFAULT_OUT_DIR          = "gameservers.out"
	DEFAULT_ENVIRONMENT_FILE = "etc/minecraft.env"

	DEFAULT_MINECRAFT_CPU    = 4096
	DEFAULT_MINECRAFT_MEMORY = 10240
)

type (
	// Config is everything that can be changed about the deployed game servers without changing code.
	Config struct {
		Region  string `yaml:"region" toml:"region" env:"GAMESERVERS_REGION"`
		Account string `yaml:"account,omitempty" toml:"account,omitempty" env:"GAMESERVERS_ACCOUNT"`
		OutDir  string `yaml:"out_dir" toml:"out_dir" env:"GAMESERVERS_OUT_DIR"`
		// AssetBucket is the bucket name format for file assets, it may contain `${AWS::AccountId}` and `${AWS::Region}`.
		AssetBucket string `yaml:"asset_bucket,omitempty" toml:"asset_bucket,omitempty" env:"GAMESERVERS_ASSET_BUCKET"`
		// Format of the top level templates, json or yaml.
		Format string `yaml:"format,omitempty" toml:"format,omitempty" env:"GAMESERVERS_FORMAT"`

		Minecraft Server `yaml:"minecraft" toml:"minecraft" envPrefix:"GAMESERVERS_MINECRAFT_"`
	}

	Server struct {
		Cpu             int    `yaml:"cpu" toml:"cpu" env:"CPU"`
		Memory          int    `yaml:"memory" toml:"memory" env:"MEMORY"`
		EnvironmentFile string `yaml:"environment_file" toml:"environment_file" env:"ENVIRONMENT_FILE"`
		ImageTag        string `yaml:"image_tag,omitempty" toml:"image_tag,omitempty" env:"IMAGE_TAG"`
		// LoadBalancer puts a network load balancer in front of the service.
		LoadBalancer bool `yaml:"load_balancer,omitempty" toml:"load_balancer,omitempty" env:"LOAD_BALANCER"`
	}
)

func Default() Config {
	return Config{
		Region: DEFAULT_REGION,
		OutDir: DEFAULT_OUT_DIR,
		Minecraft: Server{
			Cpu:             DEFAULT_MINECRAFT_CPU,
			Memory:          DEFAULT_MINECRAFT_MEMORY,
			EnvironmentFile: DEFAULT_ENVIRONMENT_FILE,
		},
	}
}

// ReadConfig reads the file at `fpath` over the defaults. The format is chosen by extension.
func ReadConfig(fpath string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(fpath)
	if err != nil {
		return cfg, err
	}

	switch ext := filepath.Ext(fpath); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
		if errors.Is(err, io.EOF) {
			err = nil
		}

	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)

	default:
		return cfg, fmt.Errorf("unsupported config file extension %q for %s", ext, fpath)
	}
	if err != nil {
		return cfg, fmt.Errorf("could not read config %s: %w", fpath, err)
	}
	return cfg, nil
}

// Load reads the optional config file, then applies the environment and the context overrides in that order.
func Load(fpath string, context []string) (Config, error) {
	cfg := Default()
	if fpath != "" {
		var err error
		if cfg, err = ReadConfig(fpath); err != nil {
			return cfg, err
		}
	}
	if err := ApplyEnv(&cfg, nil); err != nil {
		return cfg, err
	}
	if err := ApplyContext(&cfg, context); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides the config from environment variables. A nil `environ` reads the process environment.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("could not read config from environment: %w", err)
	}
	return nil
}

func (cfg Config) Validate() error {
	var errs error
	if cfg.Region == "" {
		errs = errors.Join(errs, errors.New("region is required"))
	}
	if cfg.OutDir == "" {
		errs = errors.Join(errs, errors.New("out_dir is required"))
	}
	if !slices.Contains([]string{"", "json", "yaml", "yml"}, cfg.Format) {
		errs = errors.Join(errs, fmt.Errorf("unsupported template format %q", cfg.Format))
	}
	if err := ValidateFargateSize(cfg.Minecraft.Cpu, cfg.Minecraft.Memory); err != nil {
		errs = errors.Join(errs, fmt.Errorf("minecraft: %w", err))
	}
	if cfg.Minecraft.EnvironmentFile == "" {
		errs = errors.Join(errs, errors.New("minecraft: environment_file is required"))
	}
	return errs
}
