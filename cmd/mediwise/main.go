// Package main provides the MediWise CLI entry point.
// MediWise is a terminal client for asking medication questions to the MediWise backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mediwise/internal/logger"
	"mediwise/internal/shell"
	"mediwise/internal/testutils"
	"mediwise/internal/version"
)

var (
	logLevel        string
	logFile         string
	testMode        bool
	apiBaseURL      string
	validateSession bool
	theme           string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mediwise",
	Short: "MediWise - ask medication questions from your terminal",
	Long: `MediWise is a terminal client for the MediWise assistant.
Log in, ask questions about medications, and manage your conversation history.`,
	RunE: runShell, // Default behavior is to run the interactive shell
}

// shellCmd represents the shell command (explicit version of default behavior)
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start interactive shell mode",
	RunE:  runShell,
}

// batchCmd runs a script of shell lines without a terminal
var batchCmd = &cobra.Command{
	Use:   "batch <script" + shell.ScriptExtension + ">",
	Short: "Execute a MediWise script in batch mode",
	Long: `Execute a script of shell lines directly without entering interactive mode.
Each line is handled as if typed at the prompt; a line following \login or \delete
answers that command's prompt.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(version.GetFormattedVersion())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	flags.StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	flags.BoolVar(&testMode, "test-mode", false, "Run in deterministic test mode")
	flags.StringVar(&apiBaseURL, "api-base-url", "", "MediWise backend address [default: http://localhost:8000]")
	flags.BoolVar(&validateSession, "validate-session", false, "Resume an existing session on start")
	flags.StringVar(&theme, "theme", "", "Color theme (default|dark|light|plain)")

	// Bind flags to viper
	for _, name := range []string{"log-level", "log-file", "test-mode", "api-base-url", "validate-session", "theme"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", name, err)
			os.Exit(1)
		}
	}

	// Add subcommands
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(versionCmd)

	// Configure logger before any command execution
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if err := logger.Configure(logLevel, logFile, testMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
	testutils.SetTestMode(testMode)
}

func shellOptions() shell.Options {
	return shell.Options{
		Flags:    viper.GetViper(),
		TestMode: testMode,
	}
}

func runShell(cmd *cobra.Command, _ []string) error {
	logger.Info("Starting MediWise", "version", version.GetVersion(), "development", version.IsDevelopment())

	sh, err := shell.New(shellOptions())
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	return sh.Run(cmd.Context())
}

func runBatch(cmd *cobra.Command, args []string) error {
	scriptPath := args[0]
	logger.Info("Starting MediWise batch mode", "version", version.GetVersion(), "script", scriptPath)

	if err := shell.ValidateScriptFile(scriptPath); err != nil {
		return err
	}

	file, err := os.Open(scriptPath)
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	defer func() { _ = file.Close() }()

	return shell.RunScript(cmd.Context(), shellOptions(), file)
}
