package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Custom help styles
var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(accentColor).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAAA")).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)
)

// EnvVar documents one environment default for the help screen
type EnvVar struct {
	Name string
	Help string
}

// Environment lists the variables read by config.Load
var Environment = []EnvVar{
	{"RETUNE_SERVICE_URL", "tuning endpoint"},
	{"RETUNE_TIMEOUT", "request timeout in seconds"},
	{"RETUNE_PLAYER", "playback command with {file} and {offset}"},
	{"RETUNE_OUTPUT_DIR", "directory for tuned_audio.wav"},
	{"RETUNE_TEMP_DIR", "directory for playable references"},
	{"RETUNE_DEBUG_LOG", "debug log file"},
	{"RETUNE_KEY", "starting key"},
	{"RETUNE_CORRECTION", "starting correction strength"},
}

// StyledHelpPrinter creates a custom help printer with Lipgloss styling
func StyledHelpPrinter(options kong.HelpOptions) func(options kong.HelpOptions, ctx *kong.Context) error {
	return func(options kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		sb.WriteString(helpTitleStyle.Render("Retune 🎚"))
		sb.WriteString("\n")
		sb.WriteString(helpDescStyle.Render("Pitch correction with a remote tuning service"))
		sb.WriteString("\n")

		sb.WriteString(helpSectionStyle.Render("Usage:"))
		sb.WriteString("\n  ")
		sb.WriteString(fmt.Sprintf("%s [flags] [file]", ctx.Model.Name))
		sb.WriteString("\n")

		if args := positionals(ctx); len(args) > 0 {
			sb.WriteString("\n")
			sb.WriteString(helpSectionStyle.Render("Arguments:"))
			sb.WriteString("\n")
			for _, arg := range args {
				sb.WriteString("  ")
				sb.WriteString(helpArgStyle.Render(arg.name))
				if arg.help != "" {
					sb.WriteString("  ")
					sb.WriteString(arg.help)
				}
				sb.WriteString("\n")
			}
		}

		sb.WriteString("\n")
		sb.WriteString(helpSectionStyle.Render("Flags:"))
		sb.WriteString("\n")
		for _, f := range flagLines(ctx) {
			sb.WriteString("  ")
			sb.WriteString(helpFlagStyle.Render(f.flags))
			if f.help != "" {
				sb.WriteString("  ")
				sb.WriteString(f.help)
			}
			if f.defaultVal != "" {
				sb.WriteString(" ")
				sb.WriteString(helpDefaultStyle.Render("(default: " + f.defaultVal + ")"))
			}
			sb.WriteString("\n")
		}

		sb.WriteString("\n")
		sb.WriteString(helpSectionStyle.Render("Keys:"))
		sb.WriteString("\n  chromatic, auto, or {note}:{major|minor} such as C:major, F#:minor, Bb:major\n")

		sb.WriteString("\n")
		sb.WriteString(helpSectionStyle.Render("Environment:"))
		sb.WriteString("\n")
		for _, env := range Environment {
			sb.WriteString("  ")
			sb.WriteString(helpArgStyle.Render(fmt.Sprintf("%-20s", env.Name)))
			sb.WriteString(env.Help)
			sb.WriteString("\n")
		}

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	}
}

type positional struct {
	name string
	help string
}

type flagLine struct {
	flags      string
	help       string
	defaultVal string
}

func positionals(ctx *kong.Context) []positional {
	var args []positional
	for _, arg := range ctx.Model.Node.Positional {
		args = append(args, positional{name: arg.Summary(), help: arg.Help})
	}
	return args
}

func flagLines(ctx *kong.Context) []flagLine {
	lines := []flagLine{{flags: "-h, --help", help: "Show context-sensitive help."}}

	for _, f := range ctx.Model.Node.Flags {
		if f.Name == "help" || f.Hidden {
			continue
		}

		name := fmt.Sprintf("--%s", f.Name)
		if f.Short != 0 {
			name = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
		}
		if !f.IsBool() && f.PlaceHolder != "" {
			name += "=" + strings.ToUpper(f.PlaceHolder)
		}

		def := ""
		if !f.IsBool() && f.HasDefault && f.Default != "" {
			def = f.Default
		}
		lines = append(lines, flagLine{flags: name, help: f.Help, defaultVal: def})
	}
	return lines
}
