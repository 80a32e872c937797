package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"brew/pkg/color"
	"brew/pkg/parser/codegen"

	"github.com/charmbracelet/log"
	"github.com/peterh/liner"
)

const (
	promptMain  = "brew> "
	promptCont  = "...> "
	historyFile = ".brew_history"
)

const help = `Enter Brew statements. An if block continues until its closing brace.
  :vars   show variables
  :dis    disassemble the current program
  :reset  forget every statement
  :quit   exit`

// Run starts an interactive session on the terminal
func Run(fuel int) error {
	fmt.Println(color.BoldText("Brew") + color.GrayText(" (:help for commands)"))

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}

		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	session := NewSession(os.Stdout, fuel)

	for {
		src, ok := readBlock(ln)
		if !ok {
			fmt.Println()
			return nil
		}

		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}

		if strings.HasPrefix(src, ":") {
			if quit := command(session, src, os.Stdout); quit {
				return nil
			}
			continue
		}

		if err := session.Eval(src); err != nil {
			fmt.Fprintln(os.Stderr, color.Error(err.Error()))
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if session.Exhausted() {
			fmt.Println(color.Warning("program ran out of fuel"))
		}
		printVars(os.Stdout, session.Vars())
	}
}

// readBlock reads lines until every opened if block is closed
func readBlock(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}

		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			log.Debug("prompt aborted", "error", err)
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if BlockDepth(b.String()) <= 0 {
			return b.String(), true
		}
	}
}

// command runs a colon command and reports whether the session should end
func command(s *Session, cmd string, out io.Writer) bool {
	switch strings.ToLower(cmd) {
	case ":quit", ":q":
		return true
	case ":reset":
		s.Reset()
	case ":vars":
		printVars(out, s.Vars())
	case ":dis":
		text, err := codegen.Disassemble(s.Program())
		fmt.Fprint(out, text)
		if err != nil {
			fmt.Fprintln(out, color.Error(err.Error()))
		}
	case ":help":
		fmt.Fprintln(out, help)
	default:
		fmt.Fprintln(out, "unknown command. Type :help for a list.")
	}

	return false
}

func printVars(out io.Writer, vars []Var) {
	for _, v := range vars {
		fmt.Fprintf(out, "%s = %s\n", color.CyanText(v.Name), color.YellowText(fmt.Sprint(v.Value)))
	}
}
