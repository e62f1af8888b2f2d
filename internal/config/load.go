package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/NielsdaWheelz/devsetup/internal/errors"
	"github.com/NielsdaWheelz/devsetup/internal/fs"
)

// Find returns the config path to use for root. explicit (from --config) wins and
// must exist; otherwise the first existing candidate is returned, or "" if none.
func Find(fsys fs.FS, root, explicit string) (string, error) {
	if explicit != "" {
		path := explicit
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		ok, err := fs.Exists(fsys, path)
		if err != nil {
			return "", errors.Wrap(errors.EConfigNotFound, "failed to check config file "+explicit, err)
		}
		if !ok {
			return "", errors.NewWithDetails(errors.EConfigNotFound, "config file not found: "+explicit,
				map[string]string{"path": path})
		}
		return path, nil
	}

	for _, name := range Candidates {
		path := filepath.Join(root, name)
		ok, err := fs.Exists(fsys, path)
		if err != nil {
			return "", errors.Wrap(errors.EInvalidConfig, "failed to check "+name, err)
		}
		if ok {
			return path, nil
		}
	}
	return "", nil
}

// Load finds, parses, applies env overrides to, and validates the config for root.
// With no config file present the built-in defaults are used.
func Load(fsys fs.FS, root, explicit string, env Env) (Config, error) {
	path, err := Find(fsys, root, explicit)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if path != "" {
		cfg, err = LoadFile(fsys, path)
		if err != nil {
			return Config{}, err
		}
	}

	cfg.ApplyEnv(env)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile parses a single config file on top of the defaults: keys absent from
// the file keep their default value. Unknown keys are rejected.
func LoadFile(fsys fs.FS, path string) (Config, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.New(errors.EConfigNotFound, "config file not found: "+path)
		}
		return Config{}, errors.Wrap(errors.EInvalidConfig, "failed to read "+path, err)
	}

	cfg := Default()
	name := filepath.Base(path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = decodeYAML(data, &cfg)
	case ".toml":
		err = decodeTOML(data, &cfg)
	default:
		return Config{}, errors.NewWithDetails(errors.EInvalidConfig,
			"unsupported config format "+name+"; use .yaml, .yml or .toml",
			map[string]string{"path": path})
	}
	if err != nil {
		return Config{}, errors.WrapWithDetails(errors.EInvalidConfig,
			"invalid "+name+": "+err.Error(), err,
			map[string]string{"path": path})
	}

	cfg.Source = path
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(cfg)
	if err == io.EOF {
		// empty document (or comments only): all defaults
		return nil
	}
	return err
}

func decodeTOML(data []byte, cfg *Config) error {
	// BurntSushi/toml reuses existing slice elements, so decode into a zero value
	// and copy over only the keys the document defines.
	var file Config
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return &unknownKeysError{keys: keys}
	}

	if md.IsDefined("version") {
		cfg.Version = file.Version
	}
	if md.IsDefined("project") {
		cfg.Project = file.Project
	}
	if md.IsDefined("preflight", "require_dirs") {
		cfg.Preflight.RequireDirs = file.Preflight.RequireDirs
	}
	if md.IsDefined("install") {
		cfg.Install = file.Install
	}
	if md.IsDefined("env", "disabled") {
		cfg.Env.Disabled = file.Env.Disabled
	}
	if md.IsDefined("env", "target") {
		cfg.Env.Target = file.Env.Target
	}
	if md.IsDefined("env", "template") {
		cfg.Env.Template = file.Env.Template
	}
	if md.IsDefined("next_steps") {
		cfg.NextSteps = file.NextSteps
	}
	if md.IsDefined("guide") {
		cfg.Guide = file.Guide
	}
	return nil
}

type unknownKeysError struct {
	keys []string
}

func (e *unknownKeysError) Error() string {
	return "unknown keys: " + strings.Join(e.keys, ", ")
}
