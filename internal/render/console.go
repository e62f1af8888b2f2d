// Package render provides output formatting for devsetup commands.
package render

import (
	"fmt"
	"io"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

var (
	brandPrimary = lipgloss.Color("#7C3AED") // Purple
	brandAccent  = lipgloss.Color("#10B981") // Emerald
	brandWarning = lipgloss.Color("#F59E0B") // Amber
	brandError   = lipgloss.Color("#EF4444") // Red
	textMuted    = lipgloss.Color("#6B7280") // Gray
)

type styles struct {
	title   lipgloss.Style
	success lipgloss.Style
	err     lipgloss.Style
	warning lipgloss.Style
	dim     lipgloss.Style
}

// newStyles binds styles to w's renderer so non-terminal writers get plain
// text. noColor drops all styling.
func newStyles(w io.Writer, noColor bool) styles {
	r := lipgloss.NewRenderer(w)
	if noColor {
		plain := r.NewStyle()
		return styles{title: plain, success: plain, err: plain, warning: plain, dim: plain}
	}
	return styles{
		title:   r.NewStyle().Foreground(brandPrimary).Bold(true),
		success: r.NewStyle().Foreground(brandAccent),
		err:     r.NewStyle().Foreground(brandError).Bold(true),
		warning: r.NewStyle().Foreground(brandWarning),
		dim:     r.NewStyle().Foreground(textMuted),
	}
}

// Console writes the setup progress messages. Progress goes to Out, failures
// to Err.
type Console struct {
	Out io.Writer
	Err io.Writer

	out styles
	err styles
}

// NewConsole creates a Console writing to out and errw.
func NewConsole(out, errw io.Writer, noColor bool) *Console {
	return &Console{
		Out: out,
		Err: errw,
		out: newStyles(out, noColor),
		err: newStyles(errw, noColor),
	}
}

// Banner prints the run header:
//
//	🚀 HireScope Setup
//	==================
func (c *Console) Banner(project string) {
	title := "🚀 " + strings.TrimSpace(project+" Setup")
	fmt.Fprintln(c.Out, c.out.title.Render(title))
	fmt.Fprintln(c.Out, strings.Repeat("=", lipgloss.Width(title)))
	fmt.Fprintln(c.Out)
}

// PreflightFailed prints the wrong-directory error.
func (c *Console) PreflightFailed(missing []string) {
	fmt.Fprintln(c.Err, c.err.err.Render("❌ Please run devsetup from the project root directory"))
	if len(missing) > 0 {
		fmt.Fprintln(c.Err, c.err.dim.Render("   missing: "+strings.Join(missing, ", ")))
	}
}

// RootHint follows PreflightFailed when the project root was found elsewhere.
func (c *Console) RootHint(root string) {
	fmt.Fprintln(c.Err, c.err.dim.Render("   hint: cd "+root))
}

// Installing prints "📦 Installing <area> dependencies...".
func (c *Console) Installing(area string) {
	fmt.Fprintf(c.Out, "📦 Installing %s dependencies...\n", area)
}

// WouldRun prints a dry-run plan line.
func (c *Console) WouldRun(command string) {
	fmt.Fprintln(c.Out, c.out.dim.Render("would run: "+command))
}

// Installed prints "✅ <Area> dependencies installed" and a blank line.
func (c *Console) Installed(area string) {
	fmt.Fprintln(c.Out, c.out.success.Render("✅ "+capitalize(area)+" dependencies installed"))
	fmt.Fprintln(c.Out)
}

// InstallFailed prints "❌ Failed to install <area> dependencies".
func (c *Console) InstallFailed(area, reason string) {
	fmt.Fprintln(c.Err, c.err.err.Render("❌ Failed to install "+area+" dependencies"))
	if reason != "" {
		fmt.Fprintln(c.Err, c.err.dim.Render("   "+reason))
	}
}

// EnvCreating prints "📝 Creating backend .env file..." for target
// "backend/.env".
func (c *Console) EnvCreating(target string) {
	dir, file := path.Split(path.Clean(target))
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" || dir == "." {
		fmt.Fprintf(c.Out, "📝 Creating %s file...\n", file)
		return
	}
	fmt.Fprintf(c.Out, "📝 Creating %s %s file...\n", dir, file)
}

// EnvCreated prints the confirmation and the edit reminder.
func (c *Console) EnvCreated(target, template string) {
	fmt.Fprintln(c.Out, c.out.success.Render(
		fmt.Sprintf("✅ Created %s file from %s", path.Base(target), path.Base(template))))
	fmt.Fprintln(c.Out, c.out.warning.Render(
		fmt.Sprintf("⚠️  Please edit %s with your configuration", target)))
	fmt.Fprintln(c.Out)
}

// EnvWouldCreate prints the dry-run plan for the env bootstrap.
func (c *Console) EnvWouldCreate(target, template string) {
	c.WouldRun("cp " + template + " " + target)
}

// EnvDrift warns that target lacks keys its template defines.
func (c *Console) EnvDrift(target, template string, keys []string) {
	if len(keys) == 0 {
		return
	}
	fmt.Fprintln(c.Out, c.out.warning.Render(
		fmt.Sprintf("⚠️  %s is missing keys defined in %s: %s", target, template, strings.Join(keys, ", "))))
	fmt.Fprintln(c.Out)
}

// Warn prints a generic warning line.
func (c *Console) Warn(msg string) {
	fmt.Fprintln(c.Out, c.out.warning.Render("⚠️  "+msg))
}

// Complete prints the completion banner and the next-steps guidance.
func (c *Console) Complete(nextSteps []string, guide string) {
	fmt.Fprintln(c.Out, c.out.title.Render("🎉 Setup complete!"))
	fmt.Fprintln(c.Out)
	if len(nextSteps) > 0 {
		fmt.Fprintln(c.Out, "📋 Next steps:")
		for _, line := range nextSteps {
			fmt.Fprintln(c.Out, line)
		}
	}
	if guide != "" {
		fmt.Fprintf(c.Out, "📖 For detailed instructions, see %s\n", guide)
	}
}

// DryRunComplete replaces Complete when nothing was executed.
func (c *Console) DryRunComplete() {
	fmt.Fprintln(c.Out, c.out.title.Render("🔍 Dry run complete, nothing was changed"))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
