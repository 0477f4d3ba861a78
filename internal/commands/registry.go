// Package commands provides command registration and execution for the MediWise shell.
// It manages a global registry of backslash commands and dispatches input lines to them.
package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"mediwise/internal/logger"
	"mediwise/internal/router"
)

// Dispatch errors.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNotLoggedIn    = errors.New("please log in first (\\login)")
)

// Registry manages command registration and lookup.
// It provides thread-safe registration and retrieval of commands by name.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry creates a new command registry with an empty command map.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
	}
}

// Register adds a command to the registry. Returns an error if the command
// name is empty or if a command with the same name is already registered.
func (r *Registry) Register(cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cmd.Name() == "" {
		return fmt.Errorf("command name cannot be empty")
	}

	if _, exists := r.commands[cmd.Name()]; exists {
		return fmt.Errorf("command %s already registered", cmd.Name())
	}

	r.commands[cmd.Name()] = cmd
	return nil
}

// Unregister removes a command from the registry by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.commands, name)
}

// Get retrieves a command by name.
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, exists := r.commands[name]
	return cmd, exists
}

// GetAll returns all registered commands sorted by name.
func (r *Registry) GetAll() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	commands := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		commands = append(commands, cmd)
	}
	sort.Slice(commands, func(i, j int) bool { return commands[i].Name() < commands[j].Name() })
	return commands
}

// Execute runs a command by name. Commands that require authentication are refused
// unless the router is on the chat screen.
func (r *Registry) Execute(ctx context.Context, env *Env, name, args string) error {
	cmd, exists := r.Get(name)
	if !exists {
		return fmt.Errorf("%w: \\%s", ErrUnknownCommand, name)
	}

	location := ""
	if env.Router != nil {
		location = env.Router.Location()
	}
	if cmd.RequiresAuth() && location != router.PathChat {
		return ErrNotLoggedIn
	}

	logger.CommandExecution(name, location)
	return cmd.Execute(ctx, env, args)
}

// IsValidCommand checks if a command exists in the registry.
func (r *Registry) IsValidCommand(name string) bool {
	_, exists := r.Get(name)
	return exists
}

// ParseLine splits "\name rest of line" into the command name and its raw arguments.
// ok is false when the line is not a command.
func ParseLine(line string) (name, args string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "\\") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "\\")
	name = line
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		name, args = line[:i], line[i+1:]
	}
	if name == "" {
		return "", "", false
	}
	return strings.ToLower(name), strings.TrimSpace(args), true
}

// GlobalRegistry is the registry builtin commands add themselves to during initialization.
var GlobalRegistry = NewRegistry()
