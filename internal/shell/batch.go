package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mediwise/internal/logger"
)

// ScriptExtension is the file extension of MediWise batch scripts.
const ScriptExtension = ".mw"

// ValidateScriptFile checks that path exists and has the script extension.
func ValidateScriptFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("script file does not exist: %s", path)
	}
	if ext := filepath.Ext(path); ext != ScriptExtension {
		return fmt.Errorf("script file must have %s extension, got: %s", ScriptExtension, ext)
	}
	return nil
}

// RunScript executes script lines as if typed into the shell. A line that answers a prompt
// (a password after \login, a y/N after \delete) is consumed by that prompt and not executed.
// The script stops at \exit or at the end of input.
func RunScript(ctx context.Context, opts Options, script io.Reader) error {
	data, err := io.ReadAll(script)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	console := &lineConsole{lines: strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")}
	opts.Console = console

	s, err := New(opts)
	if err != nil {
		return err
	}
	s.Start(ctx)

	executed := 0
	for !s.stopped {
		line, err := console.ReadLine("")
		if err != nil {
			break
		}
		s.ProcessLine(ctx, line)
		executed++
	}
	s.env.Chat.Wait()

	logger.Debug("Script finished", "lines", executed, "stopped", s.stopped)
	return nil
}
