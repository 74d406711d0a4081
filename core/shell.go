package core

import (
	"errors"
	"io"
	"log"
	"os"
	"os/user"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"github.com/josephlewis42/rush/core/ast"
	"github.com/josephlewis42/rush/core/config"
	"github.com/josephlewis42/rush/core/shell"
)

const (
	EnvHome = "HOME"
	EnvUser = "USER"
)

var errColor = color.New(color.FgRed)

// Shell is the interactive read-eval loop.
type Shell struct {
	Engine   *Engine
	Prompts  config.Prompt
	Readline *readline.Instance
	Logger   *log.Logger
}

// NewShell creates a shell reading from the terminal with the prompts and
// history settings of cfg.
func NewShell(engine *Engine, cfg *config.Configuration, logger *log.Logger) (*Shell, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	rlConfig := &readline.Config{
		Prompt:                 cfg.Prompt.PS1,
		HistoryLimit:           cfg.History.Size,
		DisableAutoSaveHistory: true,
	}
	if cfg.History.Size > 0 {
		rlConfig.HistoryFile = cfg.History.File(os.Getenv(EnvHome))
	} else {
		rlConfig.HistoryLimit = -1
	}

	rl, err := readline.NewEx(rlConfig)
	if err != nil {
		return nil, err
	}

	return &Shell{
		Engine:   engine,
		Prompts:  cfg.Prompt,
		Readline: rl,
		Logger:   logger,
	}, nil
}

// Prompt returns the expanded primary prompt.
func (s *Shell) Prompt() string {
	return expandPrompt(s.Prompts.PS1, currentPromptInfo())
}

// Run reads and executes commands until the end of input and returns the
// shell's exit code.
func (s *Shell) Run() int {
	var pending strings.Builder

	for {
		if pending.Len() == 0 {
			s.Readline.SetPrompt(s.Prompt())
		}

		line, err := s.Readline.Readline()
		switch {
		case err == io.EOF:
			return 0 // Input closed, quit.

		case err == readline.ErrInterrupt:
			pending.Reset()
			continue

		case err != nil:
			s.printError(err)
			return 1
		}

		if strings.HasSuffix(line, `\`) {
			pending.WriteString(strings.TrimSuffix(line, `\`))
			s.Readline.SetPrompt(s.Prompts.PS2)
			continue
		}

		pending.WriteString(line)
		src := pending.String()

		cmds, err := shell.ParseString(src)
		if shell.IsIncomplete(err) {
			pending.WriteString("\n")
			s.Readline.SetPrompt(continuationPrompt(s.Prompts, src))
			continue
		}
		pending.Reset()

		if strings.TrimSpace(src) != "" {
			if err := s.Readline.SaveHistory(src); err != nil {
				s.Logger.Printf("history: %v", err)
			}
		}

		if err != nil {
			s.printError(err)
			continue
		}

		s.execute(cmds)
	}
}

func (s *Shell) execute(cmds []ast.Command) {
	status, err := s.Engine.Execute(cmds)
	switch {
	case errors.Is(err, ErrEmpty):
	case err != nil:
		s.printError(err)
	default:
		s.Logger.Printf("%s", status)
	}
}

func (s *Shell) printError(err error) {
	errColor.Fprintf(s.Readline.Stderr(), "rush: %v\n", err)
}

// Close releases the terminal.
func (s *Shell) Close() error {
	return s.Readline.Close()
}

type promptInfo struct {
	User string
	Host string
	Dir  string
	Home string
	Root bool
}

func currentPromptInfo() promptInfo {
	info := promptInfo{
		User: os.Getenv(EnvUser),
		Home: os.Getenv(EnvHome),
		Root: os.Geteuid() == 0,
	}
	if info.User == "" {
		if u, err := user.Current(); err == nil {
			info.User = u.Username
		}
	}
	info.Host, _ = os.Hostname()
	info.Dir, _ = os.Getwd()
	return info
}

// expandPrompt replaces the \u, \h, \w and \$ escapes in ps.
func expandPrompt(ps string, info promptInfo) string {
	dir := info.Dir
	if info.Home != "" && (dir == info.Home || strings.HasPrefix(dir, info.Home+"/")) {
		dir = "~" + strings.TrimPrefix(dir, info.Home)
	}

	sigil := "$"
	if info.Root {
		sigil = "#"
	}

	return strings.NewReplacer(
		`\u`, info.User,
		`\h`, info.Host,
		`\w`, dir,
		`\$`, sigil,
	).Replace(ps)
}

// continuationPrompt picks the prompt for the next line of an incomplete
// command based on what it's waiting for.
func continuationPrompt(prompts config.Prompt, src string) string {
	switch openQuote(src) {
	case '\'':
		return prompts.PSQuote
	case '"':
		return prompts.PSDQuote
	}

	trimmed := strings.TrimRight(src, " \t\n")
	switch {
	case strings.HasSuffix(trimmed, "&&"):
		return prompts.PSAnd
	case strings.HasSuffix(trimmed, "||"):
		return prompts.PSOr
	case strings.HasSuffix(trimmed, "|"):
		return prompts.PSPipe
	default:
		return prompts.PS2
	}
}

// openQuote returns the quote character left unterminated at the end of
// src, or 0.
func openQuote(src string) rune {
	var quote rune
	escaped := false
	for _, c := range src {
		switch {
		case escaped:
			escaped = false
		case quote == '\'':
			if c == '\'' {
				quote = 0
			}
		case c == '\\':
			escaped = true
		case quote == '"':
			if c == '"' {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		}
	}
	return quote
}
