package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/msto63/termcore/foundation/term/command"
	"github.com/msto63/termcore/foundation/term/registry"
	"github.com/msto63/termcore/internal/commands"
)

const clearScreen = "\033[H\033[2J"

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session",
	Long: `Start an interactive session in the active mode.

  mode <name>   switch the active mode of this session
  mode          show the active mode
  exit, quit    leave the session`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

// shellSession holds the state of one interactive session
type shellSession struct {
	app  *app
	mode string
	out  io.Writer
}

func runShell(cmd *cobra.Command, args []string) error {
	a, err := newApp(appConfig, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.Close(ctx)
	}()

	s := &shellSession{app: a, mode: registry.NormalizeMode(activeMode), out: cmd.OutOrStdout()}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.prompt(),
		HistoryFile:     historyFile(),
		HistoryLimit:    500,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    s.completer(cmd.Context()),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(s.out, HeaderStyle.Render("termcore")+" "+MutedStyle.Render("type 'help' for commands, 'exit' to leave"))

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if !s.handle(cmd.Context(), line) {
			return nil
		}
		rl.SetPrompt(s.prompt())
	}
}

// handle processes one line and reports whether the session continues
func (s *shellSession) handle(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	switch input {
	case "":
		return true
	case "exit", "quit":
		return false
	}

	parsed := s.app.engine.Tokenize(input)
	if parsed.Command == "mode" && len(parsed.Args) > 0 {
		s.switchMode(parsed.Args[0])
		return true
	}

	result := s.app.engine.Execute(ctx, input, s.mode)
	if parsed.Command == "clear" && result.Status == command.StatusSuccess {
		fmt.Fprint(s.out, clearScreen)
		return true
	}
	if text := renderResult(result); text != "" {
		fmt.Fprintln(s.out, text)
	}
	return true
}

func (s *shellSession) switchMode(mode string) {
	s.mode = registry.NormalizeMode(mode)
	msg := fmt.Sprintf("Switched to mode %s", s.mode)
	if !commands.IsMode(s.mode) {
		msg += " (unrecognized, base commands only)"
		fmt.Fprintln(s.out, renderResult(command.Warning("%s", msg)))
		return
	}
	fmt.Fprintln(s.out, renderResult(command.Info("%s", msg)))
}

func (s *shellSession) prompt() string {
	return PromptStyle.Render("termcore") + MutedStyle.Render("["+s.mode+"]") + "> "
}

// completer offers the command names of the active mode
type completer struct {
	ctx     context.Context
	session *shellSession
}

func (s *shellSession) completer(ctx context.Context) readline.AutoCompleter {
	return &completer{ctx: ctx, session: s}
}

// Do implements readline.AutoCompleter
func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	prefix := string(line[:pos])
	if strings.ContainsAny(prefix, " \t") {
		return nil, 0
	}
	names := append(c.session.app.engine.Registry(c.ctx, c.session.mode).Names(), "help", "clear", "mode", "exit")
	var out [][]rune
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			out = append(out, []rune(n[len(prefix):]))
		}
	}
	return out, len([]rune(prefix))
}

func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "termcore_history")
}
