// Package commands describes slash commands exposed in the bot menu.
package commands

// Command maps a slash command onto an action route.
type Command struct {
	// Route is the action route dispatched when the command is sent.
	Route       string
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}
