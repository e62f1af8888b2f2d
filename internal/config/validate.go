package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/NielsdaWheelz/devsetup/internal/errors"
)

// Validate checks the config for structural errors.
// Returns E_INVALID_CONFIG naming the first offending field.
func Validate(cfg Config) error {
	if cfg.Version != Version {
		return invalid(cfg, "version", fmt.Sprintf("must be %d", Version))
	}

	for i, dir := range cfg.Preflight.RequireDirs {
		field := fmt.Sprintf("preflight.require_dirs[%d]", i)
		if err := checkRelative(dir); err != "" {
			return invalid(cfg, field, err)
		}
	}

	if len(cfg.Install) == 0 {
		return invalid(cfg, "install", "at least one install step is required")
	}
	seen := make(map[string]bool, len(cfg.Install))
	for i, step := range cfg.Install {
		field := fmt.Sprintf("install[%d]", i)
		if strings.TrimSpace(step.Name) == "" {
			return invalid(cfg, field+".name", "must be a non-empty string")
		}
		if seen[step.Name] {
			return invalid(cfg, field+".name", "duplicate step name "+step.Name)
		}
		seen[step.Name] = true

		if len(step.Command) == 0 || strings.TrimSpace(step.Command[0]) == "" {
			return invalid(cfg, field+".command", "must name an executable")
		}
		if strings.ContainsAny(step.Command[0], " \t") {
			return invalid(cfg, field+".command", "first element must be a single executable; pass arguments as separate elements")
		}

		dir := step.Dir
		if dir == "" {
			dir = "."
		}
		if err := checkRelative(dir); err != "" {
			return invalid(cfg, field+".dir", err)
		}
	}

	if !cfg.Env.Disabled {
		if (cfg.Env.Target == "") != (cfg.Env.Template == "") {
			return invalid(cfg, "env", "target and template must both be set (or set disabled: true)")
		}
		if cfg.Env.Target != "" {
			if err := checkRelative(cfg.Env.Target); err != "" {
				return invalid(cfg, "env.target", err)
			}
			if err := checkRelative(cfg.Env.Template); err != "" {
				return invalid(cfg, "env.template", err)
			}
			if filepath.Clean(cfg.Env.Target) == filepath.Clean(cfg.Env.Template) {
				return invalid(cfg, "env", "target and template must differ")
			}
		}
	}

	return nil
}

// checkRelative returns a message if p is not a path inside the project root.
func checkRelative(p string) string {
	if strings.TrimSpace(p) == "" {
		return "must be a non-empty path"
	}
	if filepath.IsAbs(p) {
		return "must be relative to the project root"
	}
	clean := filepath.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "must not escape the project root"
	}
	return ""
}

func invalid(cfg Config, field, msg string) error {
	source := cfg.Source
	if source == "" {
		source = "built-in defaults"
	}
	return errors.NewWithDetails(errors.EInvalidConfig, field+" "+msg,
		map[string]string{"field": field, "source": source})
}
