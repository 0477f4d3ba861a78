package shell

import (
	"io"

	"github.com/abiosoft/ishell/v2"
)

// ishellConsole reads follow-up input (credentials, confirmations) inside a running ishell.
type ishellConsole struct {
	shell *ishell.Shell
}

func (c *ishellConsole) ReadLine(prompt string) (string, error) {
	c.shell.ShowPrompt(false)
	defer c.shell.ShowPrompt(true)
	c.shell.Print(prompt)
	return c.shell.ReadLineErr()
}

func (c *ishellConsole) ReadPassword(prompt string) (string, error) {
	c.shell.ShowPrompt(false)
	defer c.shell.ShowPrompt(true)
	c.shell.Print(prompt)
	return c.shell.ReadPasswordErr()
}

// lineConsole answers prompts from queued lines. Batch scripts use it so a \login line can
// be followed by the password on the next line.
type lineConsole struct {
	lines []string
}

func (c *lineConsole) ReadLine(_ string) (string, error) {
	if len(c.lines) == 0 {
		return "", io.EOF
	}
	line := c.lines[0]
	c.lines = c.lines[1:]
	return line, nil
}

func (c *lineConsole) ReadPassword(prompt string) (string, error) {
	return c.ReadLine(prompt)
}
