// Package command interprets the executor's built-in command set against
// a per-session working directory. Only ls and whoami reach a real
// subprocess; everything else is answered in-process.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/shell"

	"pkt.systems/remsh/internal/format"
)

const helpText = "\r\nAvailable commands:\r\n" +
	"\x1b[32m  help\x1b[0m        - Show list of available commands\r\n" +
	"\x1b[32m  echo <text>\x1b[0m - Prints text back to the screen\r\n" +
	"\x1b[32m  about\x1b[0m       - Shows info about this executor\r\n" +
	"\x1b[32m  pwd\x1b[0m         - Prints the current working directory\r\n" +
	"\x1b[32m  ls\x1b[0m          - Lists files in the current directory\r\n" +
	"\x1b[32m  cd <path>\x1b[0m   - Changes the current directory\r\n" +
	"\x1b[32m  whoami\x1b[0m      - Prints the executor's user\r\n"

const aboutText = "This is the remsh command executor.\r\n" +
	"It interprets commands sent over the WebSocket session.\r\n"

// Interpreter runs command lines for one session. It is not safe for
// concurrent use; each session owns its own instance.
type Interpreter struct {
	cwd string
}

// New returns an interpreter rooted at startDir. An empty startDir means
// the process working directory, falling back to the root directory.
func New(startDir string) *Interpreter {
	dir := strings.TrimSpace(startDir)
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			dir = wd
		} else {
			dir = "/"
		}
	}
	return &Interpreter{cwd: dir}
}

// Cwd returns the session's current working directory.
func (i *Interpreter) Cwd() string {
	return i.cwd
}

// Run interprets one command line. It returns the response text, which
// may be empty, and whether the working directory changed.
func (i *Interpreter) Run(ctx context.Context, line string) (string, bool) {
	// Variable references stay literal; splitting is for quotes and
	// escapes, not expansion, and the server environment never leaks.
	fields, err := shell.Fields(line, func(name string) string { return "$" + name })
	if err != nil {
		return "Error: Invalid command format (unclosed quotes or invalid escapes).\r\n", false
	}
	if len(fields) == 0 {
		return "", false
	}
	name := strings.ToLower(fields[0])
	args := fields[1:]
	switch name {
	case "help":
		return helpText, false
	case "about":
		return aboutText, false
	case "echo":
		return strings.Join(args, " ") + "\r\n", false
	case "pwd":
		return i.cwd + "\r\n", false
	case "cd":
		return i.chdir(args)
	case "ls", "whoami":
		return i.execute(ctx, name, args), false
	case "birthday":
		return "Happy Birthday ohhhhhyeahhhhhhh! 🎉🎂", false
	case "heyeuuu":
		return "suki~~~Bless for sheeeeee~", false
	case "creeper":
		return "suki~", false
	default:
		return fmt.Sprintf("Unknown command: %s\r\n", line), false
	}
}

// chdir resolves the target against the session directory, requiring an
// existing directory. Without an argument it goes home. Success is
// silent; the changed flag drives the cwd announcement, so cd into the
// current directory announces nothing.
func (i *Interpreter) chdir(args []string) (string, bool) {
	if len(args) == 0 {
		home, err := os.UserHomeDir()
		if err != nil {
			return "Error: Could not find home directory.\r\n", false
		}
		changed := home != i.cwd
		i.cwd = home
		return "", changed
	}
	target := args[0]
	resolved := target
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(i.cwd, resolved)
	}
	canonical, err := filepath.EvalSymlinks(resolved)
	if err != nil {
		return fmt.Sprintf("Error: Path '%s' is invalid or does not exist.\r\n", target), false
	}
	info, err := os.Stat(canonical)
	if err != nil || !info.IsDir() {
		return fmt.Sprintf("Error: %s is not a directory or does not exist.\r\n", target), false
	}
	changed := canonical != i.cwd
	i.cwd = canonical
	return "", changed
}

// execute runs an allowlisted subprocess in the session directory and
// scrubs whatever it prints.
func (i *Interpreter) execute(ctx context.Context, name string, args []string) string {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = i.cwd
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			return format.CleanOutput(fmt.Sprintf("Error executing %s: %s\r\n", name, stderr.String()))
		case errors.Is(err, exec.ErrNotFound):
			return fmt.Sprintf("Error: Command '%s' not found. Is it installed and in your PATH?\r\n", name)
		default:
			return fmt.Sprintf("Failed to execute %s command: %s\r\n", name, err)
		}
	}
	return format.CleanOutput(stdout.String())
}
