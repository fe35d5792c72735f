// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ManuGH/stbbridge/internal/config"
	"github.com/ManuGH/stbbridge/internal/version"
	"gopkg.in/yaml.v3"
)

func runConfigCLI(args []string) int {
	return configCLI(args, os.Stdout, os.Stderr)
}

func configCLI(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printConfigUsage(stderr)
		return 0
	}

	switch args[0] {
	case "validate":
		return runConfigValidate(args[1:], stdout, stderr)
	case "dump":
		return runConfigDump(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "Unknown subcommand: %s\n\n", args[0])
		printConfigUsage(stderr)
		return 2
	}
}

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  stbbridge config validate [--file|-f config.yaml]")
	fmt.Fprintln(w, "  stbbridge config dump [--file|-f config.yaml] [--format=yaml|json]")
}

func loadForCLI(fs *flag.FlagSet, args []string, stderr io.Writer) (config.AppConfig, string, int) {
	var file string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return config.AppConfig{}, "", 2
	}

	path := resolveConfigPath(file)
	cfg, err := config.NewLoader(path, version.Version).Load()
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error in %s:\n  %v\n", path, err)
		return config.AppConfig{}, path, 1
	}
	return cfg, path, 0
}

func runConfigValidate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("stbbridge config validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg, path, code := loadForCLI(fs, args, stderr)
	if code != 0 {
		return code
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(stderr, "Configuration error in %s:\n  %v\n", path, err)
		return 1
	}
	if path == "" {
		path = "environment configuration"
	}
	fmt.Fprintf(stdout, "%s is valid\n", path)
	return 0
}

// runConfigDump prints the effective configuration (defaults, file, env)
// with secrets redacted.
func runConfigDump(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("stbbridge config dump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var format string
	fs.StringVar(&format, "format", "yaml", "output format: yaml or json")
	cfg, _, code := loadForCLI(fs, args, stderr)
	if code != 0 {
		return code
	}
	redactSecrets(&cfg)

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			fmt.Fprintf(stderr, "Error encoding config: %v\n", err)
			return 1
		}
	case "yaml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			fmt.Fprintf(stderr, "Error encoding config: %v\n", err)
			return 1
		}
		_ = enc.Close()
	default:
		fmt.Fprintf(stderr, "Unknown format: %s\n", format)
		return 2
	}
	return 0
}

func redactSecrets(cfg *config.AppConfig) {
	for _, s := range []*string{&cfg.Password, &cfg.RefreshToken, &cfg.Backend.Password, &cfg.Cache.RedisPassword} {
		if *s != "" {
			*s = "***"
		}
	}
	cfg.Backend.URL = maskURL(cfg.Backend.URL)
}
