// Package config provides fail-open configuration loading shared by the
// api, worker and CLI binaries.
//
// Values are resolved from the environment first and then from an optional
// YAML file named by CONFIG_FILE. Invalid values never stop a process from
// starting: the loader falls back to the default, logs a warning and records
// the fallback in the component's *_config_* metrics.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileEnvKey names the environment variable pointing at the optional YAML file.
const FileEnvKey = "CONFIG_FILE"

// Source resolves configuration keys. Environment variables always win over
// file values; empty values count as unset.
type Source struct {
	path string
	file map[string]string
}

// EnvSource returns a Source backed by the environment only.
func EnvSource() *Source {
	return &Source{}
}

// NewSource returns a Source that falls back to the flat YAML mapping in
// path. An empty path yields an environment-only source.
//
// The file uses the environment variable names as keys:
//
//	FEED_URL: https://www.githubstatus.com/history.atom
//	DISPLAY_TIMEZONE: Europe/Berlin
//	SLACK_ENABLED: true
func NewSource(path string) (*Source, error) {
	if path == "" {
		return EnvSource(), nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- operator supplied config path
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	file := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v.(type) {
		case nil:
			continue
		case map[string]interface{}, []interface{}:
			return nil, fmt.Errorf("parse config file %s: key %q must be a scalar", path, k)
		}
		file[strings.ToUpper(k)] = fmt.Sprint(v)
	}

	return &Source{path: path, file: file}, nil
}

// SourceFromEnv builds the Source named by CONFIG_FILE.
func SourceFromEnv() (*Source, error) {
	return NewSource(os.Getenv(FileEnvKey))
}

// Lookup returns the value for key and whether it was set anywhere.
func (s *Source) Lookup(key string) (string, bool) {
	if v := os.Getenv(key); v != "" {
		return v, true
	}
	if s == nil {
		return "", false
	}
	v, ok := s.file[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Path is the backing file, empty for environment-only sources.
func (s *Source) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}
