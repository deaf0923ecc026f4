package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"lox/pkg/config"
	"lox/pkg/lexer"
	"lox/pkg/lox"
	"lox/pkg/parser"
	"lox/pkg/token"
	"lox/pkg/version"
)

const continuationPrompt = "... "

func startREPL(cfg *config.Config) int {
	fmt.Printf("Lox %s REPL. Type :quit to exit.\n", version.Version)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(cfg.HistoryFile); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(cfg.HistoryFile); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	session := lox.NewSession(os.Stdout, os.Stderr, slog.Default())
	for {
		code, ok := readSource(ln, cfg.Prompt, continuationPrompt)
		if !ok {
			fmt.Println()
			return 0
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit", ":q":
				return 0
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		// Errors in one entry must not end the session.
		session.Reporter.Reset()
		session.Run(code)
	}
}

// readSource keeps prompting until the buffered lines form input that is
// either complete or wrong for a reason more lines cannot fix.
func readSource(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl-C drops the pending input.
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if !errors.Is(checkComplete(src), errIncomplete) {
			return src, true
		}
	}
}

var errIncomplete = errors.New("incomplete input")

// checkComplete returns errIncomplete when src ends before a string,
// statement or block does.
func checkComplete(src string) error {
	l := lexer.New(src)
	p := parser.New(l)
	p.ParseProgram()

	for _, e := range l.Errors() {
		if e.Message == "Unterminated string." {
			return errIncomplete
		}
	}
	if len(l.Errors()) > 0 {
		return l.Errors()[0]
	}
	for _, e := range p.Errors() {
		if e.Token.Type == token.EOF {
			return errIncomplete
		}
	}
	if len(p.Errors()) > 0 {
		return p.Errors()[0]
	}
	return nil
}
