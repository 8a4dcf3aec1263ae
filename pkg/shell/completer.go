package shell

import (
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/r3d91ll/tempchart/pkg/chart"
	"github.com/r3d91ll/tempchart/pkg/export"
	"github.com/r3d91ll/tempchart/pkg/help"
)

// commands lists the shell commands without the / prefix.
var commands = help.Names()

// argumentSources lists, per command, the values its first argument can take.
var argumentSources = map[string]func() []string{
	"preset": chart.PresetNames,
	"help": func() []string { return commands },
	"format": func() []string {
		var names []string
		for _, f := range export.Formats() {
			names = append(names, string(f))
		}
		return names
	},
}

// ShellCompleter completes command names and the arguments of /preset and
// /format. It implements readline.AutoCompleter.
type ShellCompleter struct {
	sources map[string]func() []string
}

// NewShellCompleter creates a completer over the built-in commands.
func NewShellCompleter() *ShellCompleter {
	return &ShellCompleter{sources: argumentSources}
}

var _ readline.AutoCompleter = (*ShellCompleter)(nil)

// Do implements readline.AutoCompleter. It returns the candidate suffixes
// for the word under the cursor and the length of that word.
func (c *ShellCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	if len(line) == 0 || pos <= 0 {
		return nil, 0
	}
	if pos > len(line) {
		pos = len(line)
	}

	lineStr := string(line[:pos])
	wordStart := findWordStart(lineStr)
	currentWord := lineStr[wordStart:]

	length = len([]rune(currentWord))
	if wordStart == 0 {
		if strings.HasPrefix(currentWord, "/") {
			return completeFrom(commands, strings.TrimPrefix(currentWord, "/")), length
		}
		return nil, 0
	}

	cmd, argIndex := commandContext(lineStr[:wordStart])
	if argIndex != 0 {
		return nil, 0
	}
	source, ok := c.sources[cmd]
	if !ok {
		return nil, 0
	}
	return completeFrom(source(), currentWord), length
}

// findWordStart returns the index where the current word begins.
func findWordStart(s string) int {
	lastSpace := strings.LastIndex(s, " ")
	lastTab := strings.LastIndex(s, "\t")

	wordStart := lastSpace
	if lastTab > wordStart {
		wordStart = lastTab
	}
	return wordStart + 1
}

// commandContext returns the command name of a line prefix and how many
// complete arguments follow it.
func commandContext(before string) (string, int) {
	fields := strings.Fields(before)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", -1
	}
	return strings.TrimPrefix(fields[0], "/"), len(fields) - 1
}

// completeFrom returns the suffixes of candidates starting with prefix, each
// followed by a space, in sorted order.
func completeFrom(candidates []string, prefix string) [][]rune {
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	var matches [][]rune
	for _, cand := range sorted {
		if strings.HasPrefix(cand, prefix) {
			matches = append(matches, []rune(cand[len(prefix):]+" "))
		}
	}
	return matches
}
