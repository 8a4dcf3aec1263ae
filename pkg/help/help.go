// Package help renders the command reference of the tempchart shell.
//
// Commands are grouped by category and drawn with box-drawing rules. Color
// is optional: a Renderer writing to a pipe or a file emits plain text.
//
//	r := help.NewRenderer(os.Stdout, true)
//	r.RenderFull()
//	r.RenderCommand("preset")
package help

import (
	"fmt"
	"io"
	"strings"
)

// Box drawing characters.
const (
	BoxHorizontal = "─"
	BoxVertical   = "│"
	BoxTeeLeft    = "├"
)

// ANSI color codes.
const (
	ColorReset  = "\033[0m"
	ColorBold   = "\033[1m"
	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorGray   = "\033[90m"
)

// commandColumnWidth fits the longest "/name (or /x)" entry.
const commandColumnWidth = 24

const (
	indentCategory = "  "
	indentCommand  = "    "
	indentExample  = "      "
)

// Renderer formats and writes help output.
type Renderer struct {
	w     io.Writer
	color bool
}

// NewRenderer creates a renderer writing to w. With color false every
// style helper returns its input unchanged.
func NewRenderer(w io.Writer, color bool) *Renderer {
	return &Renderer{w: w, color: color}
}

// RenderFull writes every category followed by the shortcuts section.
func (r *Renderer) RenderFull() {
	r.writeln("")
	r.writeln(indentCategory + r.style(ColorBold+ColorCyan, "tempchart commands"))
	r.writeln("")
	for _, cat := range CategoryOrder {
		r.renderCategory(cat)
	}
	r.RenderShortcuts()
}

// RenderCommand writes the detailed help of one command. It reports false,
// after printing a hint, when the command is unknown.
func (r *Renderer) RenderCommand(name string) bool {
	cmd, found := GetCommand(name)
	if !found {
		r.writeln(fmt.Sprintf(indentCategory+"Command '%s' not found. Use /help to see all commands.", name))
		return false
	}

	r.writeln("")
	r.writeln(indentCategory + r.commandLabel(cmd))
	r.writeln(indentCategory + r.style(ColorGray, cmd.Description))
	r.writeln("")
	r.writeln(indentCategory + r.style(ColorBold, "Usage:") + " " + r.style(ColorYellow, cmd.Usage))
	r.writeln("")

	if len(cmd.Examples) > 0 {
		r.writeln(indentCategory + r.style(ColorBold, "Examples:"))
		for _, ex := range cmd.Examples {
			r.writeln(indentCommand + r.style(ColorCyan, ex.Command) + r.style(ColorGray, "  # "+ex.Description))
		}
		r.writeln("")
	}
	return true
}

// RenderShortcuts writes the aliases and key bindings.
func (r *Renderer) RenderShortcuts() {
	r.writeln(indentCategory + r.style(ColorBold+ColorGreen, "Shortcuts"))
	r.writeln(indentCategory + r.style(ColorGray, r.separator()))

	var aliases []string
	for _, cmd := range Commands {
		if cmd.Shortcut != "" {
			aliases = append(aliases, r.style(ColorBold+ColorYellow, cmd.Shortcut)+r.style(ColorGray, "="+strings.TrimPrefix(cmd.Name, "/")))
		}
	}
	r.writeln(indentCommand + r.style(ColorGray, BoxVertical+" Aliases: ") + strings.Join(aliases, "  "))
	r.writeln(indentCommand + r.style(ColorGray, BoxVertical+" Keys:    ") +
		r.style(ColorBold+ColorYellow, "Tab") + r.style(ColorGray, " complete  ") +
		r.style(ColorBold+ColorYellow, "Ctrl+D") + r.style(ColorGray, " exit  ") +
		r.style(ColorBold+ColorYellow, "↑↓") + r.style(ColorGray, " history"))
	r.writeln("")
}

func (r *Renderer) renderCategory(cat Category) {
	cmds := GetCommandsByCategory(cat)
	if len(cmds) == 0 {
		return
	}

	r.writeln(indentCategory + r.style(ColorBold+ColorGreen, cat.DisplayName()))
	r.writeln(indentCategory + r.style(ColorGray, r.separator()))
	for _, cmd := range cmds {
		label := r.commandLabel(cmd)
		pad := commandColumnWidth - visibleLength(label)
		if pad < 1 {
			pad = 1
		}
		r.writeln(indentCommand + r.style(ColorGray, BoxVertical+" ") + label + strings.Repeat(" ", pad) + r.style(ColorGray, cmd.Description))
		if len(cmd.Examples) > 0 {
			r.writeln(indentExample + r.style(ColorGray, BoxVertical+"   e.g. ") + r.style(ColorYellow, cmd.Examples[0].Command))
		}
	}
	r.writeln("")
}

func (r *Renderer) commandLabel(cmd Command) string {
	if cmd.Shortcut == "" {
		return r.style(ColorCyan, cmd.Name)
	}
	return r.style(ColorCyan, cmd.Name) + r.style(ColorGray, " (or "+cmd.Shortcut+")")
}

func (r *Renderer) separator() string {
	return BoxTeeLeft + strings.Repeat(BoxHorizontal, commandColumnWidth+24)
}

func (r *Renderer) style(codes, text string) string {
	if !r.color {
		return text
	}
	return codes + text + ColorReset
}

func (r *Renderer) writeln(s string) {
	fmt.Fprintln(r.w, s)
}

// visibleLength returns the length of s in runes, ignoring ANSI escapes.
func visibleLength(s string) int {
	length := 0
	inEscape := false
	for _, c := range s {
		switch {
		case c == '\033':
			inEscape = true
		case inEscape:
			if c == 'm' {
				inEscape = false
			}
		default:
			length++
		}
	}
	return length
}
