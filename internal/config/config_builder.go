package config

import (
	"errors"
	"fmt"
	"os"

	"dario.cat/mergo"
)

type configBuilder struct {
	configs []*StructuredConfig
	args    []string
	err     error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		configs: make([]*StructuredConfig, 0, 4),
		args:    os.Args[1:],
	}
}

// build merges collected configs. mergo only fills zero fields of the
// destination, so configs appended first take precedence.
func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building config: %w", b.err)
	}

	config := new(StructuredConfig)
	for _, cfg := range b.configs {
		if err := mergo.Merge(config, cfg); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	return config, config.validate()
}

func (b *configBuilder) withEnv() *configBuilder {
	envCfg := &StructuredConfig{}
	if err := parseEnv(envCfg); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, envCfg)
	return b
}

func (b *configBuilder) withFlags() *configBuilder {
	flags, err := ParseFlags(b.args)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, flags)
	return b
}

func (b *configBuilder) withFile() *configBuilder {
	var path string
	for _, cfg := range b.configs {
		if cfg.FilePath != "" {
			path = cfg.FilePath
			break
		}
	}

	if path == "" {
		return b
	}

	fileCfg, err := parseFile(path)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}
	b.configs = append(b.configs, fileCfg)

	return b
}

func (b *configBuilder) withDefaults() *configBuilder {
	b.configs = append(b.configs, defaultConfig())
	return b
}
