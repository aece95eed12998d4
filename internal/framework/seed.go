package framework

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadSeed reads a framework document from a YAML, JSON or TOML file. The
// file replaces the built-in default for first load and reset. Keys are read
// case-insensitively, so department names in departmentGuidelines come back
// lower-cased; GuidelineFor matches them regardless of case.
func LoadSeed(path string) (*Framework, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read framework seed %s: %w", path, err)
	}

	var f Framework
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("decode framework seed %s: %w", path, err)
	}
	f.Version = 0

	if err := Validate(&f); err != nil {
		return nil, fmt.Errorf("framework seed %s: %w", path, err)
	}
	return &f, nil
}

// Defaults returns the seed document when path is set, the built-in
// default otherwise.
func Defaults(seedPath string) (*Framework, error) {
	if seedPath == "" {
		return Default(), nil
	}
	return LoadSeed(seedPath)
}
