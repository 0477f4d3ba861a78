package commands

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediwise/internal/router"
)

// MockCommand implements Command for testing.
type MockCommand struct {
	name         string
	requiresAuth bool
	calls        []string
}

func NewMockCommand(name string) *MockCommand {
	return &MockCommand{name: name}
}

func (m *MockCommand) Name() string        { return m.name }
func (m *MockCommand) Description() string { return fmt.Sprintf("Mock command: %s", m.name) }
func (m *MockCommand) Usage() string       { return fmt.Sprintf("\\%s", m.name) }
func (m *MockCommand) RequiresAuth() bool  { return m.requiresAuth }

func (m *MockCommand) HelpInfo() HelpInfo {
	return HelpInfo{Command: m.name, Description: m.Description(), Usage: m.Usage()}
}

func (m *MockCommand) Execute(_ context.Context, _ *Env, args string) error {
	m.calls = append(m.calls, args)
	return nil
}

type authFlag bool

func (a authFlag) Authenticated() bool { return bool(a) }

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Register(NewMockCommand("list")))
	assert.True(t, registry.IsValidCommand("list"))

	err := registry.Register(NewMockCommand("list"))
	assert.EqualError(t, err, "command list already registered")

	err = registry.Register(NewMockCommand(""))
	assert.EqualError(t, err, "command name cannot be empty")

	registry.Unregister("list")
	assert.False(t, registry.IsValidCommand("list"))
}

func TestRegistry_GetAllSorted(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"open", "delete", "login"} {
		require.NoError(t, registry.Register(NewMockCommand(name)))
	}

	var names []string
	for _, cmd := range registry.GetAll() {
		names = append(names, cmd.Name())
	}
	assert.Equal(t, []string{"delete", "login", "open"}, names)
}

func TestRegistry_ExecuteChecksAuth(t *testing.T) {
	registry := NewRegistry()
	open := NewMockCommand("open")
	open.requiresAuth = true
	login := NewMockCommand("login")
	require.NoError(t, registry.Register(open))
	require.NoError(t, registry.Register(login))

	ctx := context.Background()
	loggedOut := &Env{Router: router.New(authFlag(false))}

	assert.ErrorIs(t, registry.Execute(ctx, loggedOut, "open", "1"), ErrNotLoggedIn)
	assert.Empty(t, open.calls)
	require.NoError(t, registry.Execute(ctx, loggedOut, "login", "ann@example.com"))
	assert.Equal(t, []string{"ann@example.com"}, login.calls)

	loggedIn := &Env{Router: router.New(authFlag(true))}
	require.NoError(t, registry.Execute(ctx, loggedIn, "open", "1"))
	assert.Equal(t, []string{"1"}, open.calls)

	assert.ErrorIs(t, registry.Execute(ctx, loggedIn, "nope", ""), ErrUnknownCommand)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		name string
		args string
		ok   bool
	}{
		{`\login`, "login", "", true},
		{`  \rename 2   New title  `, "rename", "New title", true},
		{"\\open\tc1", "open", "c1", true},
		{`\HELP`, "help", "", true},
		{`hello`, "", "", false},
		{`\`, "", "", false},
		{`\ login`, "", "", false},
	}

	for _, tt := range tests {
		name, args, ok := ParseLine(tt.line)
		assert.Equal(t, tt.ok, ok, tt.line)
		assert.Equal(t, tt.name, name, tt.line)
		assert.Equal(t, tt.args, args, tt.line)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = registry.Register(NewMockCommand(fmt.Sprintf("cmd%d", i)))
		}(i)
		go func() {
			defer wg.Done()
			_ = registry.GetAll()
		}()
	}
	wg.Wait()
	assert.Len(t, registry.GetAll(), 10)
}

func TestEnvDefaults(t *testing.T) {
	env := &Env{}
	assert.NotNil(t, env.Styles())
	assert.False(t, env.Clock().IsZero())
}
