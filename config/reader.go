package config

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
)

// Read reads a config from the given file. ${VAR} references are expanded from the environment
// before decoding.
func Read(filePath string) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf))
}

// FromReader reads a config from the given reader and specifies where, if applicable, the file
// the reader originated from. Defaults are applied before validation.
func FromReader(originalPath string, r io.Reader) (*Config, error) {
	cfg := Config{ConfigFilePath: originalPath}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config from json")
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %q", originalPath)
	}
	return &cfg, nil
}
