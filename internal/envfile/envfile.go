// Package envfile creates a working env file from its checked-in template and
// reports keys the working copy is missing.
package envfile

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"

	"github.com/NielsdaWheelz/devsetup/internal/errors"
	"github.com/NielsdaWheelz/devsetup/internal/fs"
)

// State is the outcome of Bootstrap.
type State string

const (
	// StateCreated means the target was copied from the template.
	StateCreated State = "created"
	// StateExists means the target was already present and left untouched.
	StateExists State = "exists"
	// StateNoTemplate means neither file exists; nothing was done.
	StateNoTemplate State = "no_template"
	// StateDisabled means the bootstrap is turned off in config.
	StateDisabled State = "disabled"
	// StatePlanned means a dry run would have created the target.
	StatePlanned State = "planned"
)

// Result describes what Bootstrap did.
type Result struct {
	State    State
	Target   string // absolute path
	Template string // absolute path
}

// Bootstrap copies template to target (both relative to root) when target is
// absent and template is present. An existing target is never modified; a
// missing template is a silent no-op. With dryRun set nothing is written and
// StatePlanned is returned where a copy would happen.
func Bootstrap(fsys fs.FS, root, target, template string, dryRun bool) (Result, error) {
	res := Result{
		Target:   filepath.Join(root, target),
		Template: filepath.Join(root, template),
	}

	exists, err := fs.Exists(fsys, res.Target)
	if err != nil {
		return res, errors.WrapWithDetails(errors.EEnvCopyFailed, "failed to check "+target, err,
			map[string]string{"target": target})
	}
	if exists {
		res.State = StateExists
		return res, nil
	}

	hasTemplate, err := fs.Exists(fsys, res.Template)
	if err != nil {
		return res, errors.WrapWithDetails(errors.EEnvCopyFailed, "failed to check "+template, err,
			map[string]string{"template": template})
	}
	if !hasTemplate {
		res.State = StateNoTemplate
		return res, nil
	}

	if dryRun {
		res.State = StatePlanned
		return res, nil
	}

	if err := fs.CopyFileAtomic(fsys, res.Template, res.Target); err != nil {
		return res, errors.WrapWithDetails(errors.EEnvCopyFailed,
			"failed to create "+target+" from "+template+": "+err.Error(), err,
			map[string]string{"target": target, "template": template})
	}

	res.State = StateCreated
	return res, nil
}

// Keys parses an env file and returns its keys, sorted.
func Keys(fsys fs.FS, path string) ([]string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	vars, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Drift returns the keys defined in template but absent from target, sorted.
// Both files must exist and parse.
func Drift(fsys fs.FS, target, template string) ([]string, error) {
	want, err := Keys(fsys, template)
	if err != nil {
		return nil, err
	}
	have, err := Keys(fsys, target)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(have))
	for _, k := range have {
		present[k] = true
	}

	var missing []string
	for _, k := range want {
		if !present[k] {
			missing = append(missing, k)
		}
	}
	return missing, nil
}

// CheckDrift is Drift for the doctor/setup report: it returns nil, nil when
// either file is absent.
func CheckDrift(fsys fs.FS, target, template string) ([]string, error) {
	for _, p := range []string{target, template} {
		if _, err := fsys.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, err
		}
	}
	return Drift(fsys, target, template)
}
