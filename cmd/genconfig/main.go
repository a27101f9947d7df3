// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Command genconfig writes the example configuration files under deploy/
// from the built-in defaults.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"

	"codeberg.org/pinmark/pinmark/config"
	"codeberg.org/pinmark/pinmark/core/audit"
)

const (
	envOutputFile  = "deploy/.env.example"
	yamlOutputFile = "deploy/config.yaml.example"
	filePerm       = 0o644
	dirPerm        = 0o755

	envFileHeader = `# Pinmark configuration (via environment variables)
#
# Copy this file to .env and customize the values below.
#
# This file was auto-generated using go run ./cmd/genconfig.

`
	yamlFileHeader = `# Pinmark configuration (via configuration file)
#
# Copy this file to config.yaml and customize the values below.
#
# This file was auto-generated using go run ./cmd/genconfig.
`
	secretComment = `# Without a secret every restart logs all users out.
# A key can be generated with: openssl rand -hex 32`
)

// uncommented lists the variables written active in the .env example.
var uncommented = map[string]bool{
	"PINMARK_HOST":          true,
	"PINMARK_PORT":          true,
	"PINMARK_DATABASE_PATH": true,
	"PINMARK_REDIS_ADDR":    true,
	"PINMARK_MEDIA_ROOT":    true,
}

func main() {
	audit.SetDefaultLogger()

	yamlContent, err := renderYAML()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal config to YAML")
	}

	write(envOutputFile, renderEnv())
	write(yamlOutputFile, yamlContent)
}

func write(path, content string) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to create output directory")
	}

	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to write example file")
	}

	log.Info().Str("path", path).Msg("Successfully generated example file")
}

func defaults() *config.ServerConfig {
	cfg := &config.ServerConfig{}
	cfg.SetDefaults()

	return cfg
}

// renderEnv lists every environment variable with its default, grouped by section.
func renderEnv() string {
	val := reflect.ValueOf(*defaults())
	typ := val.Type()

	var sb strings.Builder

	sb.WriteString(envFileHeader)

	for i := range typ.NumField() {
		section := val.Field(i)
		if section.Kind() != reflect.Struct || typ.Field(i).Name == "Build" {
			continue
		}

		var lines []string

		for j := range section.NumField() {
			tag, ok := section.Type().Field(j).Tag.Lookup("env")
			if !ok {
				continue
			}

			lines = append(lines, envLine(strings.Split(tag, ",")[0], section.Field(j)))
		}

		if len(lines) == 0 {
			continue
		}

		fmt.Fprintf(&sb, "## %s\n%s\n\n", typ.Field(i).Name, strings.Join(lines, "\n"))
	}

	return sb.String()
}

func envLine(name string, value reflect.Value) string {
	switch {
	case name == "PINMARK_SECRET":
		return secretComment + "\n# " + name + "="
	case uncommented[name]:
		return fmt.Sprintf("%s=%q", name, fmt.Sprint(value.Interface()))
	case value.Kind() == reflect.Slice:
		parts := make([]string, value.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(value.Index(i).Interface())
		}

		return "# " + name + "=" + strings.Join(parts, ",")
	case value.Kind() == reflect.String && value.Len() == 0:
		return "# " + name + "="
	default:
		return fmt.Sprintf("# %s=%v", name, value.Interface())
	}
}

// renderYAML marshals the defaults and comments out every value, keeping
// section headers so the file reads as a template.
func renderYAML() (string, error) {
	var yamlContent strings.Builder

	encoderOpts := []yaml.EncodeOption{
		config.GetDurationEncoderOption(),
		yaml.Indent(2),
	}
	if err := yaml.NewEncoder(&yamlContent, encoderOpts...).Encode(defaults()); err != nil {
		return "", err
	}

	var sb strings.Builder

	sb.WriteString(yamlFileHeader)

	for line := range strings.SplitSeq(yamlContent.String(), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		// Top-level keys (e.g., "basic:") are section headers.
		if !strings.HasPrefix(line, " ") {
			fmt.Fprintf(&sb, "\n%s\n", line)

			continue
		}

		indent := strings.Repeat(" ", len(line)-len(strings.TrimLeft(line, " ")))

		if strings.HasPrefix(trimmed, "secret:") {
			for comment := range strings.SplitSeq(secretComment, "\n") {
				sb.WriteString(indent + comment + "\n")
			}
		}

		fmt.Fprintf(&sb, "%s# %s\n", indent, trimmed)
	}

	return sb.String(), nil
}
