// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Command genconfig writes example configuration files from the defaults.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"

	"codeberg.org/twinkle/i18nguard/config"
	"codeberg.org/twinkle/i18nguard/core/audit"
)

const (
	envOutputFile  = ".env.example"
	yamlOutputFile = "i18nguard.yaml.example"
	dirPerm        = 0o755
	filePerm       = 0o644

	envFileHeader = `# i18nguard configuration (via environment variables)
#
# Copy this file to .env and customize the values below.
# Lists are comma-separated.
#
# This file was auto-generated using go run ./cmd/genconfig.

`
	yamlFileHeader = `# i18nguard configuration (via configuration file)
#
# Copy this file to i18nguard.yaml and customize the values below.
#
# This file was auto-generated using go run ./cmd/genconfig.
`
)

// essentialEnv and essentialYAML are written uncommented.
var (
	essentialEnv  = []string{"I18NGUARD_SOURCE_DIR", "I18NGUARD_OUTPUT_DIR"}
	essentialYAML = []string{"sourceDir:", "outputDir:"}
)

func main() {
	outDir := flag.String("out", "deploy", "directory to write the example files to")
	flag.Parse()

	audit.SetDefaultLogger()

	cfg := &config.Config{}
	cfg.SetDefaults()

	yamlText, err := renderYAML(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal config to YAML")
	}

	if err := os.MkdirAll(*outDir, dirPerm); err != nil {
		log.Fatal().Err(err).Str("path", *outDir).Msg("Failed to create output directory")
	}

	for name, content := range map[string]string{
		envOutputFile:  renderEnv(cfg),
		yamlOutputFile: yamlText,
	} {
		path := filepath.Join(*outDir, name)

		if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Failed to write example file")
		}

		log.Info().Str("path", path).Msg("Successfully generated example file")
	}
}

// renderEnv lists every env-tagged field with its default, one section per
// top-level config struct.
func renderEnv(cfg *config.Config) string {
	var sb strings.Builder
	sb.WriteString(envFileHeader)

	val := reflect.ValueOf(cfg).Elem()
	typ := val.Type()

	for i := range typ.NumField() {
		structField := typ.Field(i)
		structValue := val.Field(i)

		if structValue.Kind() != reflect.Struct || structField.Tag.Get("yaml") == "-" {
			continue
		}

		fmt.Fprintf(&sb, "## %s\n", structField.Name)

		innerTyp := structValue.Type()
		for j := range innerTyp.NumField() {
			tag, ok := innerTyp.Field(j).Tag.Lookup("env")
			if !ok {
				continue
			}

			envVarName, _, _ := strings.Cut(tag, ",")
			value := envValue(structValue.Field(j))

			if slices.Contains(essentialEnv, envVarName) {
				fmt.Fprintf(&sb, "%s=%q\n", envVarName, value)
			} else {
				fmt.Fprintf(&sb, "# %s=%s\n", envVarName, value)
			}
		}

		sb.WriteString("\n")
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

// envValue formats v the way readEnv parses it.
func envValue(v reflect.Value) string {
	if v.Kind() == reflect.Slice {
		items := make([]string, v.Len())
		for i := range v.Len() {
			items[i] = fmt.Sprint(v.Index(i).Interface())
		}

		return strings.Join(items, ",")
	}

	return fmt.Sprint(v.Interface())
}

// renderYAML marshals cfg and comments out everything but the section
// headers and the essential keys.
func renderYAML(cfg *config.Config) (string, error) {
	var yamlContent strings.Builder

	if err := yaml.NewEncoder(&yamlContent, yaml.Indent(2), yaml.IndentSequence(true)).Encode(cfg); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(yamlFileHeader)

	for line := range strings.SplitSeq(yamlContent.String(), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		// Top-level keys (e.g., "catalog:") are treated as section headers.
		if !strings.HasPrefix(line, " ") {
			fmt.Fprintf(&sb, "\n%s\n", line)

			continue
		}

		if slices.ContainsFunc(essentialYAML, func(key string) bool { return strings.HasPrefix(trimmed, key) }) {
			sb.WriteString(line + "\n")

			continue
		}

		indentSize := len(line) - len(strings.TrimLeft(line, " "))
		fmt.Fprintf(&sb, "%s# %s\n", strings.Repeat(" ", indentSize), trimmed)
	}

	return sb.String(), nil
}
