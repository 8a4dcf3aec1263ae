package help

import "strings"

// Category groups commands in the help listing.
type Category string

const (
	CategoryChart   Category = "chart"
	CategorySetup   Category = "setup"
	CategoryGeneral Category = "general"
)

// CategoryOrder is the order categories appear in.
var CategoryOrder = []Category{CategoryChart, CategorySetup, CategoryGeneral}

var categoryNames = map[Category]string{
	CategoryChart:   "Charts",
	CategorySetup:   "Configuration",
	CategoryGeneral: "General",
}

// DisplayName returns the heading shown for the category.
func (c Category) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return string(c)
}

// Command describes one shell command.
type Command struct {
	// Name includes the leading slash.
	Name     string
	Shortcut string
	Category Category

	Description string
	Usage       string
	Examples    []Example

	// Hidden commands resolve but are left out of listings and completion.
	Hidden bool
}

// Example is a sample invocation.
type Example struct {
	Command     string
	Description string
}

// Commands is the source of truth for shell command names and docs.
var Commands = []Command{
	{
		Name:        "/generate",
		Shortcut:    "/g",
		Category:    CategoryChart,
		Description: "Render the chart and write it out",
		Usage:       "/generate",
	},
	{
		Name:        "/layout",
		Category:    CategoryChart,
		Description: "Show the page geometry",
		Usage:       "/layout",
	},
	{
		Name:        "/last",
		Category:    CategoryChart,
		Description: "Show the most recent run",
		Usage:       "/last",
	},
	{
		Name:        "/preset",
		Category:    CategorySetup,
		Description: "Show or switch the layout preset",
		Usage:       "/preset [wide|compact]",
		Examples: []Example{
			{Command: "/preset compact", Description: "Two weeks on a narrower page"},
			{Command: "/preset", Description: "Show the active preset"},
		},
	},
	{
		Name:        "/format",
		Category:    CategorySetup,
		Description: "Show or switch the output format",
		Usage:       "/format [pdf|svg|png]",
		Examples: []Example{
			{Command: "/format svg", Description: "Write SVG instead of PDF"},
		},
	},
	{
		Name:        "/config",
		Category:    CategorySetup,
		Description: "Show the active configuration",
		Usage:       "/config",
	},
	{
		Name:        "/save",
		Category:    CategorySetup,
		Description: "Save the configuration",
		Usage:       "/save [path] [-f]",
		Examples: []Example{
			{Command: "/save", Description: "Write to the config file in use"},
			{Command: "/save other.yaml -f", Description: "Overwrite without asking"},
		},
	},
	{
		Name:        "/help",
		Shortcut:    "/h",
		Category:    CategoryGeneral,
		Description: "Show this help",
		Usage:       "/help [command]",
		Examples: []Example{
			{Command: "/help save", Description: "Show detailed /save help"},
		},
	},
	{
		Name:        "/quit",
		Shortcut:    "/q",
		Category:    CategoryGeneral,
		Description: "Exit",
		Usage:       "/quit",
	},
	{
		Name:        "/exit",
		Category:    CategoryGeneral,
		Description: "Exit",
		Usage:       "/exit",
		Hidden:      true,
	},
}

// GetCommandsByCategory returns the visible commands of a category.
func GetCommandsByCategory(cat Category) []Command {
	var result []Command
	for _, cmd := range Commands {
		if cmd.Category == cat && !cmd.Hidden {
			result = append(result, cmd)
		}
	}
	return result
}

// GetCommand looks a command up by name or shortcut, with or without the
// leading slash.
func GetCommand(name string) (Command, bool) {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	for _, cmd := range Commands {
		if cmd.Name == name || cmd.Shortcut == name {
			return cmd, true
		}
	}
	return Command{}, false
}

// Names returns every command name without the slash, hidden ones included.
func Names() []string {
	names := make([]string, 0, len(Commands))
	for _, cmd := range Commands {
		names = append(names, strings.TrimPrefix(cmd.Name, "/"))
	}
	return names
}
