// Package shell provides the interactive MediWise shell. It wires the services, session,
// router and conversation controller together and routes each input line to a command or
// to the chat.
package shell

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/abiosoft/ishell/v2"
	"github.com/spf13/viper"

	"mediwise/internal/chat"
	"mediwise/internal/commands"
	_ "mediwise/internal/commands/builtin" // Import for side effects (init functions)
	"mediwise/internal/logger"
	"mediwise/internal/output"
	"mediwise/internal/router"
	"mediwise/internal/services"
	"mediwise/internal/state"
	"mediwise/internal/version"
)

// Messages printed by the shell itself.
const (
	SessionExpiredText = "Session expired. Please log in again."
	LoggedOutHintText  = "Type \\login to sign in, \\signup to create an account, or \\help for commands."
)

// Options configures a Shell.
type Options struct {
	// Flags carries the viper-bound command line flags.
	Flags *viper.Viper

	// ConfigOptions are passed to the configuration service after Flags.
	ConfigOptions []services.ConfigOption

	// TestMode forces plain, deterministic output.
	TestMode bool

	// Console replaces the ishell console. When set, Run is unavailable.
	Console commands.Console

	// Writer receives printed output. Defaults to stdout.
	Writer io.Writer
}

// Shell is one interactive MediWise session.
type Shell struct {
	ish      *ishell.Shell
	services *services.Registry
	config   *services.ConfigurationService
	registry *commands.Registry
	env      *commands.Env
	printer  *output.Printer
	stopped  bool
}

// New builds the service graph and the command environment.
func New(opts Options) (*Shell, error) {
	s := &Shell{registry: commands.GlobalRegistry}

	console := opts.Console
	if console == nil {
		s.ish = ishell.New()
		console = &ishellConsole{shell: s.ish}
	}

	configOpts := opts.ConfigOptions
	if opts.Flags != nil {
		configOpts = append([]services.ConfigOption{services.WithFlags(opts.Flags)}, configOpts...)
	}
	s.config = services.NewConfigurationService(configOpts...)
	if err := s.config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	// The logger was configured before .env files were read.
	if level := s.config.LogLevel(); level != "" && !opts.TestMode {
		logger.SetLevel(logger.ParseLevel(level))
	}

	nav := &lateNavigator{}
	if err := s.initializeServices(nav); err != nil {
		return nil, err
	}

	debug, _ := services.GetServiceAs[*services.DebugTransportService](s.services, "debug-transport")
	transport, _ := services.GetServiceAs[*services.HTTPRequestService](s.services, "http_request")
	client, _ := services.GetServiceAs[*services.SessionRefreshService](s.services, "session_refresh")
	themes, _ := services.GetServiceAs[*services.ThemeService](s.services, "theme")
	markdown, _ := services.GetServiceAs[*services.MarkdownService](s.services, "markdown")

	printerOpts := []output.Option{output.WithWriter(opts.Writer)}
	if opts.TestMode || !services.ColorsEnabled() {
		printerOpts = append(printerOpts, output.Plain())
	} else {
		printerOpts = append(printerOpts, output.WithStyles(themes.GetThemeByName(s.config.Theme())))
	}
	s.printer = output.NewPrinter(printerOpts...)
	logger.Debug("Output configured", "theme", s.config.Theme(), "styled", s.printer.Styled())

	session := state.NewSession(
		services.NewAuthService(client),
		state.WithValidateOnStart(s.config.ValidateSessionOnStart()),
	)
	rt := router.New(session)
	nav.router = rt

	controller := chat.NewController(
		services.NewPromptService(client),
		services.NewConversationService(client),
		chat.WithConfirmer(commands.ConfirmDelete(console)),
	)

	s.env = &commands.Env{
		Session:  session,
		Chat:     controller,
		Router:   rt,
		Console:  console,
		Printer:  s.printer,
		Capture:  debug,
		Cookies:  transport,
		Registry: s.registry,
		Exit:     s.stop,
	}
	if s.config.RenderMarkdown() && !opts.TestMode {
		theme := s.config.Theme()
		s.env.Markdown = output.MarkdownFunc(func(md string) (string, error) {
			return markdown.RenderWithTheme(md, theme)
		})
	}

	rt.OnHardRedirect(func() {
		session.Reset()
		controller.Reset()
		s.printer.Warning(SessionExpiredText)
	})
	rt.OnChange(func(_, to string) {
		if s.ish != nil {
			s.ish.SetPrompt(promptFor(to))
		}
	})

	return s, nil
}

// initializeServices registers the transport stack and the rendering services in
// dependency order and initializes them.
func (s *Shell) initializeServices(nav services.Navigator) error {
	s.services = services.NewRegistry()

	debug := services.NewDebugTransportService()
	if err := debug.Initialize(); err != nil {
		return err
	}
	transport := services.NewHTTPRequestService(
		s.config.BaseURL(),
		services.WithTransport(debug.CreateTransport()),
		services.WithTimeout(s.config.HTTPTimeout()),
	)

	for _, service := range []services.Service{
		debug,
		transport,
		services.NewSessionRefreshService(transport, services.RefreshPath, nav),
		services.NewThemeService(),
		services.NewMarkdownService(s.config.MarkdownWidth()),
	} {
		if err := s.services.RegisterService(service); err != nil {
			return err
		}
	}

	if err := s.services.InitializeAll(); err != nil {
		return err
	}
	logger.Debug("Services initialized", "base_url", s.config.BaseURL())
	return nil
}

// Start resolves the initial location. With session validation enabled a surviving session
// goes straight to the chat screen.
func (s *Shell) Start(ctx context.Context) {
	s.env.Session.Start(ctx)
	location := s.env.Router.Navigate("/")
	if s.ish != nil {
		s.ish.SetPrompt(promptFor(location))
	}

	if location == router.PathChat {
		s.execute(ctx, "list", "")
		return
	}
	s.printer.Info(LoggedOutHintText)
}

// ProcessLine handles one line of input: a backslash command, a chat prompt on the chat
// screen, or a hint everywhere else. Blank lines and %% comments are ignored.
func (s *Shell) ProcessLine(ctx context.Context, line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "%%") {
		return
	}

	if name, args, ok := commands.ParseLine(line); ok {
		s.execute(ctx, name, args)
		return
	}

	if s.env.Router.Location() != router.PathChat {
		s.printer.Info(LoggedOutHintText)
		return
	}
	s.execute(ctx, "send", line)
}

func (s *Shell) execute(ctx context.Context, name, args string) {
	err := s.registry.Execute(ctx, s.env, name, args)
	if err == nil || services.IsAuthExpired(err) {
		return
	}

	logger.Error("Command failed", "command", name, "error", err)
	s.printer.Error(services.UserMessage(err))
	if !s.registry.IsValidCommand(name) {
		s.printer.Muted("Type \\help for available commands")
	}
}

// Prompt returns the prompt for the current location.
func (s *Shell) Prompt() string {
	return promptFor(s.env.Router.Location())
}

// Env exposes the command environment.
func (s *Shell) Env() *commands.Env {
	return s.env
}

// Run starts the interactive loop. It returns when the user exits.
func (s *Shell) Run(ctx context.Context) error {
	if s.ish == nil {
		return fmt.Errorf("shell was built without an interactive console")
	}

	// Remove built-in commands so they reach the MediWise command registry
	s.ish.DeleteCmd("exit")
	s.ish.DeleteCmd("help")

	s.ish.CustomCompleter(NewCompleter(s.registry, s.env.Chat))
	s.ish.NotFound(func(c *ishell.Context) {
		s.ProcessLine(ctx, strings.Join(c.RawArgs, " "))
	})
	s.ish.Interrupt(func(c *ishell.Context, count int, _ string) {
		if count >= 2 {
			s.stop()
			return
		}
		c.Println("Press Ctrl-C again or type \\exit to quit.")
	})

	s.printer.Println(version.GetFormattedVersion() + " - medication questions answered")
	s.printer.Println("Type '\\help' for commands or '\\exit' to quit.")
	s.Start(ctx)

	s.ish.Run()
	s.env.Chat.Wait()
	return nil
}

func (s *Shell) stop() {
	s.stopped = true
	if s.ish != nil {
		s.ish.Stop()
	}
}

func promptFor(location string) string {
	switch location {
	case router.PathChat:
		return "chat> "
	case router.PathSignup:
		return "signup> "
	default:
		return "login> "
	}
}

// lateNavigator breaks the construction cycle between the refresh interceptor, which needs
// the router, and the router, which needs the session built on top of the interceptor.
type lateNavigator struct {
	router *router.Router
}

func (n *lateNavigator) Location() string {
	if n.router == nil {
		return router.PathLogin
	}
	return n.router.Location()
}

func (n *lateNavigator) Redirect(path string) {
	if n.router != nil {
		n.router.Redirect(path)
	}
}
