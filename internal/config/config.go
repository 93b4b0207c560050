// Package config loads protocol settings from TOML files.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/pior/binproto"
	"github.com/pior/binproto/charset"
	"github.com/pior/binproto/queue"
)

type File struct {
	Text  TextConfig  `toml:"text"`
	Fixed FixedConfig `toml:"fixed"`
	Pump  PumpConfig  `toml:"pump"`
	Log   LogConfig   `toml:"log"`
}

type TextConfig struct {
	Encoding      string `toml:"encoding"`
	EncodeErrors  string `toml:"encode_errors"`
	DecodeErrors  string `toml:"decode_errors"`
	QueueCapacity int    `toml:"queue_capacity"`
}

type FixedConfig struct {
	QueueCapacity int           `toml:"queue_capacity"`
	Fields        []FieldConfig `toml:"fields"`
}

type FieldConfig struct {
	Kind   string `toml:"kind"`
	Length int    `toml:"length"`
}

type PumpConfig struct {
	ChunkSize               int    `toml:"chunk_size"`
	MaxConsecutiveMalformed uint32 `toml:"max_consecutive_malformed"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Load reads, defaults and validates a config file. Unknown keys are
// rejected so that typos do not silently fall back to defaults.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return File{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes, defaults and validates TOML text.
func Parse(data string) (File, error) {
	var cfg File
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return File{}, fmt.Errorf("parse failed: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return File{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return File{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *File) {
	def := binproto.DefaultTextConfig()
	if cfg.Text.Encoding == "" {
		cfg.Text.Encoding = def.Encoding
	}
	if cfg.Text.EncodeErrors == "" {
		cfg.Text.EncodeErrors = string(def.EncodeErrors)
	}
	if cfg.Text.DecodeErrors == "" {
		cfg.Text.DecodeErrors = string(def.DecodeErrors)
	}
	if cfg.Text.QueueCapacity == 0 {
		cfg.Text.QueueCapacity = def.QueueCapacity
	}
	if cfg.Fixed.QueueCapacity == 0 {
		cfg.Fixed.QueueCapacity = queue.DefaultCapacity
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func Validate(cfg File) error {
	if _, err := charset.Lookup(cfg.Text.Encoding); err != nil {
		return fmt.Errorf("text: %w", err)
	}
	if _, err := binproto.ParseMode(cfg.Text.EncodeErrors); err != nil {
		return fmt.Errorf("text.encode_errors: %w", err)
	}
	if _, err := binproto.ParseMode(cfg.Text.DecodeErrors); err != nil {
		return fmt.Errorf("text.decode_errors: %w", err)
	}
	if cfg.Text.QueueCapacity < 0 {
		return fmt.Errorf("text.queue_capacity must not be negative")
	}
	if cfg.Fixed.QueueCapacity < 0 {
		return fmt.Errorf("fixed.queue_capacity must not be negative")
	}
	for i, f := range cfg.Fixed.Fields {
		if strings.TrimSpace(f.Kind) == "" {
			return fmt.Errorf("fixed.fields[%d]: kind is required", i)
		}
		if f.Length <= 0 {
			return fmt.Errorf("fixed.fields[%d]: length must be positive", i)
		}
	}
	if cfg.Pump.ChunkSize < 0 {
		return fmt.Errorf("pump.chunk_size must not be negative")
	}
	return nil
}
