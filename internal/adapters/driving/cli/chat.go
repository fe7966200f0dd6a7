package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui"
)

// errNotTerminal is returned when chat is started without a terminal.
var errNotTerminal = errors.New("chat needs an interactive terminal; use 'docqa ask' or 'docqa batch' instead")

// isTerminal reports whether stdout is a terminal. Replaced in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Launch the interactive chat",
	Long: `Launch a terminal chat over the indexed documents.

Answers carry numbered citations. A sidebar shows usage statistics for
the session.

Controls:
  Enter     - Ask
  Tab       - Next category filter
  Shift+Tab - Previous category filter
  PgUp/PgDn - Scroll the transcript
  Ctrl+R    - Reset statistics
  Ctrl+S    - Toggle the statistics panel
  Esc       - Quit`,
	Aliases: []string{"tui"},
	RunE:    runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) (err error) {
	if !isTerminal() {
		return errNotTerminal
	}

	rt, err := openRuntime(cmd, nil)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("chat crashed: %v", r)
		}
	}()

	app, err := tui.NewApp(&tui.Ports{
		Query:     rt.Query,
		Stats:     rt.Stats,
		Catalogue: rt.Catalogue,
	})
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	app.WithContext(commandContext(cmd))

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}
	return nil
}
