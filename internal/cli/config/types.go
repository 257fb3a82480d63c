// Package config provides configuration management for the qssync CLI.
package config

import "github.com/quicksight-tools/qssync/internal/importer"

// Config holds all CLI configuration options.
type Config struct {
	Profile      string                   `koanf:"profile"`
	Region       string                   `koanf:"region"`
	OutputDir    string                   `koanf:"output_dir"`
	ImportSuffix string                   `koanf:"import_suffix"`
	Endpoint     string                   `koanf:"endpoint"`
	Verbose      bool                     `koanf:"verbose"`
	Credentials  CredentialsConfig        `koanf:"credentials"`
	Dashboard    DashboardConfig          `koanf:"dashboard"`
	Profiles     map[string]ProfileConfig `koanf:"profiles"`
}

// CredentialsConfig carries optional static API credentials. Values support
// ${VAR} expansion so secrets stay out of the config file.
type CredentialsConfig struct {
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	SessionToken    string `koanf:"session_token"`
}

// DashboardConfig configures the dashboard publishing step.
type DashboardConfig struct {
	Permissions []importer.Grant `koanf:"permissions"`
}

// ProfileConfig holds per-profile configuration overrides, selected by the
// active profile name.
type ProfileConfig struct {
	Region      string            `koanf:"region"`
	OutputDir   string            `koanf:"output_dir"`
	Endpoint    string            `koanf:"endpoint"`
	Credentials CredentialsConfig `koanf:"credentials"`
}

// Default configuration values.
const (
	DefaultProfile      = "dev"
	DefaultOutputDir    = "."
	DefaultImportSuffix = importer.DefaultSuffix
)
