// Package output renders list and info output with adaptive terminal
// styling. Styles use semantic names defined in styles.yaml and
// adjust to light and dark terminal themes. When color is off the
// renderer emits plain lines, stable for scripting.
package output

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/kibank/pkg/logging"
)

//go:embed styles.yaml
var stylesYAML []byte

// colorDef is an adaptive color definition in YAML
type colorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// styleDef is a style definition in YAML
type styleDef struct {
	Bold       bool   `yaml:"bold,omitempty"`
	Italic     bool   `yaml:"italic,omitempty"`
	Underline  bool   `yaml:"underline,omitempty"`
	Foreground string `yaml:"foreground,omitempty"`
}

type stylesConfig struct {
	Colors map[string]colorDef `yaml:"colors"`
	Styles map[string]styleDef `yaml:"styles"`
}

// Renderer styles terminal output for the list and info commands.
type Renderer struct {
	styled bool
	styles map[string]lipgloss.Style
}

// NewRenderer builds a renderer honoring the color mode ("auto", "on"
// or "off"), the NO_COLOR convention and whether stdout is a
// terminal.
func NewRenderer(colorMode string) *Renderer {
	styled := false
	switch colorMode {
	case "on":
		styled = true
	case "off":
		styled = false
	default:
		styled = os.Getenv("NO_COLOR") == "" &&
			isatty.IsTerminal(os.Stdout.Fd()) &&
			termenv.DefaultOutput().Profile != termenv.Ascii
	}

	r := &Renderer{styled: styled, styles: map[string]lipgloss.Style{}}
	if !styled {
		return r
	}

	var cfg stylesConfig
	if err := yaml.Unmarshal(stylesYAML, &cfg); err != nil {
		log := logging.GetLogger("output")
		log.Warn().Err(err).Msg("Cannot parse embedded styles, using plain output")
		r.styled = false
		return r
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(cfg.Colors))
	for name, def := range cfg.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}
	for name, def := range cfg.Styles {
		style := lipgloss.NewStyle().Bold(def.Bold).Italic(def.Italic).Underline(def.Underline)
		if def.Foreground != "" {
			if c, ok := colors[def.Foreground]; ok {
				style = style.Foreground(c)
			}
		}
		r.styles[name] = style
	}
	return r
}

func (r *Renderer) render(style, s string) string {
	if !r.styled {
		return s
	}
	if st, ok := r.styles[style]; ok {
		return st.Render(s)
	}
	return s
}

// Header renders a section heading.
func (r *Renderer) Header(s string) string {
	return r.render("Header", s)
}

// Entry renders one list line: the member path and its kind.
func (r *Renderer) Entry(path, kind string) string {
	return fmt.Sprintf("%s\t%s", r.render("Path", path), r.render("Kind", kind))
}

// Field renders one info line: a metadata label and its value.
func (r *Renderer) Field(label, value string) string {
	return fmt.Sprintf("%s %s", r.render("Label", label+":"), r.render("Value", value))
}

// Warning renders a warning line.
func (r *Renderer) Warning(s string) string {
	return r.render("Warning", s)
}
