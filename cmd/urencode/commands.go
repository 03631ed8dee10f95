package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/squareup/unsaferow/errors"
)

type EncodeCommand struct {
	Query  string   `help:"Query text, optionally led by an option comment such as /*ur,node=1*/"`
	Values []string `arg:"" optional:"" help:"One text value per column, NULL for null"`
}

func (c *EncodeCommand) Run(r *runner) error {
	return r.encodeRow(c.Query, c.Values)
}

// ShellCommand reads one row per line: an optional option comment followed by the
// column values separated by |, e.g. "/*ur*/ 42 | NULL | café".
type ShellCommand struct {
	VI bool `help:"Enable VI mode."`
}

func (c *ShellCommand) Run(r *runner) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return errors.WithStack(err)
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 "urencode> ",
		HistoryFile:            filepath.Join(home, ".urencode.history"),
		DisableAutoSaveHistory: true,
		VimMode:                c.VI,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		_ = rl.Close()
	}()
	r.out = rl.Stdout()
	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return nil
		}
		if err != nil {
			return errors.WithStack(err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		_ = rl.SaveHistory(line)
		if err := r.encodeLine(line); err != nil {
			fmt.Fprintln(rl.Stderr(), err.Error())
		}
	}
}
