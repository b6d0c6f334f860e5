package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/advenimus/jwtools/internal/launcher"
)

// TerminalPrompter asks for a tool's path on the terminal. Used by the
// command-line launch path; the TUI surfaces missing tools through the
// settings panel instead.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
}

// NewTerminalPrompter creates a prompter over stdin/stdout.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stdout}
}

// PickApplication asks the user to type the path to a tool. An empty line
// cancels.
func (p *TerminalPrompter) PickApplication(tool launcher.Tool, defaultDir string, extensions []string) (string, bool, error) {
	hint := ""
	if len(extensions) > 0 {
		hint = " (." + strings.Join(extensions, ", .") + ")"
	}
	fmt.Fprintf(p.Out, "%s was not found.\n", tool.DisplayName())
	fmt.Fprintf(p.Out, "Enter the path to %s%s, or press Enter to skip.\n", tool.DisplayName(), hint)
	fmt.Fprintf(p.Out, "Looked in: %s\n> ", defaultDir)

	reader := bufio.NewReader(p.In)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			return "", true, nil
		}
		return "", false, err
	}

	path := strings.TrimSpace(line)
	if path == "" {
		return "", true, nil
	}
	return path, false, nil
}
