// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"codeberg.org/twinkle/i18nguard/core/catalog"
	"codeberg.org/twinkle/i18nguard/core/idgen"
)

// Global exposes the pipeline configuration.
var Global Config

const (
	defaultConfigPath  = "./i18nguard.yaml"
	fallbackConfigPath = "./i18nguard.yml"
)

// Config holds the pipeline configuration.
type Config struct {
	Build buildInfo `yaml:"-"`

	Run struct {
		ID           string `yaml:"-"`
		StartingTime string `yaml:"-"`
	} `yaml:"-"`

	Catalog struct {
		SourceDir        string   `env:"I18NGUARD_SOURCE_DIR,overwrite" yaml:"sourceDir"`
		OutputDir        string   `env:"I18NGUARD_OUTPUT_DIR,overwrite" yaml:"outputDir"`
		BaseLanguage     string   `env:"I18NGUARD_BASE_LANGUAGE,overwrite" yaml:"baseLanguage"`
		ScaffoldLanguage string   `env:"I18NGUARD_SCAFFOLD_LANGUAGE,overwrite" yaml:"scaffoldLanguage"`
		SkipLanguages    []string `env:"I18NGUARD_SKIP_LANGUAGES,overwrite" yaml:"skipLanguages"`
		Engine           string   `env:"I18NGUARD_ENGINE,overwrite" yaml:"engine"`
		Workers          int      `env:"I18NGUARD_WORKERS,overwrite" yaml:"workers"`
		// {key} and {lang} are substituted.
		TranslationURL string                `env:"I18NGUARD_TRANSLATION_URL,overwrite" yaml:"translationUrl"`
		RawPrecompress []string              `env:"I18NGUARD_PRECOMPRESS,overwrite" yaml:"precompress"`
		Precompress    []catalog.Compression `yaml:"-"`
		// 0 disables the string cache.
		CacheSize     int  `env:"I18NGUARD_CACHE_SIZE,overwrite" yaml:"cacheSize"`
		CacheCompress bool `env:"I18NGUARD_CACHE_COMPRESS,overwrite" yaml:"cacheCompress"`
	} `yaml:"catalog"`

	Audit struct {
		SourceDirs       []string `env:"I18NGUARD_AUDIT_SOURCE_DIRS,overwrite" yaml:"sourceDirs"`
		Extensions       []string `env:"I18NGUARD_AUDIT_EXTENSIONS,overwrite" yaml:"extensions"`
		LookupFunction   string   `env:"I18NGUARD_LOOKUP_FUNCTION,overwrite" yaml:"lookupFunction"`
		ExternalKeysFile string   `env:"I18NGUARD_EXTERNAL_KEYS_FILE,overwrite" yaml:"externalKeysFile"`
		DynamicKeys      []string `env:"I18NGUARD_DYNAMIC_KEYS,overwrite" yaml:"dynamicKeys"`
		FailOnUnused     bool     `env:"I18NGUARD_FAIL_ON_UNUSED,overwrite" yaml:"failOnUnused"`
	} `yaml:"audit"`

	Report struct {
		// Empty disables the YAML run report.
		Path string `env:"I18NGUARD_REPORT_PATH,overwrite" yaml:"path"`
	} `yaml:"report"`

	Log struct {
		Level   string   `env:"I18NGUARD_LOG_LEVEL,overwrite" yaml:"logLevel"`
		Outputs []string `env:"I18NGUARD_LOG_OUTPUTS,overwrite" yaml:"logOutputs"`
		Format  string   `env:"I18NGUARD_LOG_FORMAT,overwrite" yaml:"logFormat"`
	} `yaml:"log"`
}

// LoadConfig loads the configuration from various sources, using the
// -config flag to locate the YAML file.
func (cfg *Config) LoadConfig() error {
	parsedConfigFlagValue := parseCommandLineArgs()

	// Check if the -config flag was explicitly set by the user.
	configFlagUserSet := false

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			configFlagUserSet = true
		}
	})

	var configFilePath string

	// Precedence:
	// 1. Command-line flag (-config)
	// 2. Environment variable (I18NGUARD_CONFIGFILE)
	// 3. Default path with fallback check
	switch envVar := os.Getenv("I18NGUARD_CONFIGFILE"); {
	case configFlagUserSet:
		configFilePath = parsedConfigFlagValue
	case envVar != "":
		configFilePath = envVar
	default:
		configFilePath = parsedConfigFlagValue

		if _, err := os.Stat(configFilePath); os.IsNotExist(err) {
			if _, statErr := os.Stat(fallbackConfigPath); statErr == nil {
				configFilePath = fallbackConfigPath
			}
		}
	}

	if err := cfg.Load(configFilePath); err != nil {
		return err
	}

	cfg.setupAudit()
	cfg.print()

	return nil
}

// Load builds the configuration from defaults, the YAML file at
// configFilePath (skipped if empty or missing), a .env file and the
// environment, then validates it.
func (cfg *Config) Load(configFilePath string) error {
	cfg.SetDefaults()

	cfg.Build.load()

	cfg.Run.ID = idgen.Make()
	cfg.Run.StartingTime = time.Now().UTC().Format("2006-01-02 15:04")

	if err := cfg.readYAML(configFilePath); err != nil {
		return fmt.Errorf("error loading YAML config: %w", err)
	}

	if err := useDotEnv(); err != nil {
		return fmt.Errorf("error using .env file: %w", err)
	}

	if err := readEnv(cfg); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	if err := cfg.validateAndSet(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	return nil
}
