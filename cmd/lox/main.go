package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"lox/pkg/ast"
	"lox/pkg/config"
	"lox/pkg/lexer"
	"lox/pkg/lox"
	"lox/pkg/mail"
	"lox/pkg/report"
	"lox/pkg/server"
	"lox/pkg/version"
)

const (
	envFile    = ".env"
	configFile = "lox.yaml"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(report.ExitUsage)
	}

	command := os.Args[1]

	// Handle flags
	switch command {
	case "--version", "-v", "version":
		printVersion()
		return
	case "--help", "-h", "help":
		printHelp()
		return
	}

	cfg := loadConfig()

	// If the first argument ends with .lox, treat it as a file to run
	if strings.HasSuffix(command, ".lox") {
		os.Exit(runFile(cfg, command, ""))
	}

	args := os.Args[2:]
	switch command {
	case "repl":
		os.Exit(startREPL(cfg))
	case "run":
		os.Exit(cmdRun(cfg, args))
	case "eval":
		requireArg(args, "Usage: lox eval '<code>'")
		os.Exit(evalCode(args[0]))
	case "tokens":
		requireArg(args, "Usage: lox tokens <file>")
		os.Exit(printTokens(args[0]))
	case "ast":
		requireArg(args, "Usage: lox ast <file>")
		os.Exit(printProgramAST(args[0]))
	case "inspect":
		requireArg(args, "Usage: lox inspect <file>")
		os.Exit(inspectFile(args[0]))
	case "serve":
		os.Exit(cmdServe(cfg, args))
	case "hash":
		requireArg(args, "Usage: lox hash <password>")
		os.Exit(hashPassword(args[0]))
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printHelp()
		os.Exit(report.ExitUsage)
	}
}

func requireArg(args []string, usage string) {
	if len(args) < 1 {
		fmt.Println(usage)
		os.Exit(report.ExitUsage)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load(envFile, configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return cfg
}

func printUsage() {
	fmt.Println("Lox v" + version.Version)
	fmt.Println("\nUsage:")
	fmt.Println("  lox <file.lox>           Run a Lox script")
	fmt.Println("  lox repl                 Start interactive REPL")
	fmt.Println("  lox run <file>           Run a Lox script (explicit)")
	fmt.Println("  lox eval '<code>'        Evaluate Lox source")
	fmt.Println("  lox version              Show version information")
	fmt.Println("  lox help                 Show this help message")
	fmt.Println("\nFlags:")
	fmt.Println("  -v, --version            Show version information")
	fmt.Println("  -h, --help               Show this help message")
}

func cmdRun(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	mailTo := fs.String("mail-to", "", "mail the output and errors of the run to this address")
	if err := fs.Parse(args); err != nil {
		return report.ExitUsage
	}
	if fs.NArg() < 1 {
		fmt.Println("Usage: lox run [-mail-to addr] <file>")
		return report.ExitUsage
	}
	return runFile(cfg, fs.Arg(0), *mailTo)
}

// runFile executes a script and, when mailTo is set, mails a transcript
// of everything it printed.
func runFile(cfg *config.Config, filename, mailTo string) int {
	var transcript, diagnostics bytes.Buffer
	stdout := io.Writer(os.Stdout)
	stderr := io.Writer(os.Stderr)
	if mailTo != "" {
		if err := cfg.RequireSMTP(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		stdout = io.MultiWriter(os.Stdout, &transcript)
		stderr = io.MultiWriter(os.Stderr, &diagnostics)
	}

	session := lox.NewSession(stdout, stderr, slog.Default())
	err := session.RunFile(filename)
	if err != nil && !session.Reporter.HadError() && !session.Reporter.HadRuntimeError() {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		return 1
	}

	if mailTo != "" {
		msg := mail.Transcript(cfg.SMTP, mailTo, filename, transcript.String(), diagnostics.String())
		if err := mail.Send(mail.NewDialer(cfg.SMTP), msg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		slog.Info("transcript mailed", slog.String("to", mailTo))
	}
	return session.Reporter.ExitCode()
}

func evalCode(code string) int {
	session := lox.NewSession(os.Stdout, os.Stderr, slog.Default())
	session.Run(code)
	return session.Reporter.ExitCode()
}

func printTokens(filename string) int {
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		return 1
	}

	l := lexer.New(string(data))
	for _, tok := range l.ScanTokens() {
		fmt.Println(tok.String())
	}

	reporter := report.New(os.Stderr)
	for _, e := range l.Errors() {
		reporter.Static(e)
	}
	return reporter.ExitCode()
}

// parseFile scans, parses and resolves a script without running it.
func parseFile(filename string) (*ast.Program, int) {
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		return nil, 1
	}
	session := lox.NewSession(os.Stdout, os.Stderr, slog.Default())
	program, err := session.Parse(string(data))
	if err != nil {
		return nil, session.Reporter.ExitCode()
	}
	return program, 0
}

func printProgramAST(filename string) int {
	program, code := parseFile(filename)
	if program == nil {
		return code
	}
	fmt.Println(program.String())
	return 0
}

func inspectFile(filename string) int {
	program, code := parseFile(filename)
	if program == nil {
		return code
	}

	insights := analyzeProgram(program)
	printClassInsights(os.Stdout, insights.Classes)
	printFunctionInsights(os.Stdout, insights.Functions)
	return 0
}

func cmdServe(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", cfg.Server.Addr, "listen address")
	if err := fs.Parse(args); err != nil {
		return report.ExitUsage
	}
	cfg.Server.Addr = *addr

	if err := cfg.RequireServer(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Starting lox server on %s\n", cfg.Server.Addr)
	if err := server.New(cfg.Server, slog.Default()).ListenAndServe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		return 1
	}
	return 0
}

func hashPassword(password string) int {
	hash, err := server.HashPassword(password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(hash)
	return 0
}

func printVersion() {
	fmt.Printf("Lox %s\n", version.Version)
	fmt.Printf("Build Date: %s\n", version.BuildDate)
	fmt.Printf("Git Commit: %s\n", version.GitCommit)
}

func printHelp() {
	fmt.Println("Lox: a tree-walking interpreter")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  lox <file.lox>                 Run a Lox script (shortcut for 'lox run')")
	fmt.Println("  lox run [-mail-to addr] <file> Execute a script, optionally mailing a transcript")
	fmt.Println("  lox repl                       Start the interactive REPL")
	fmt.Println("  lox eval '<code>'              Run source given on the command line")
	fmt.Println("  lox tokens <file>              Print the token stream")
	fmt.Println("  lox ast <file>                 Print the program AST")
	fmt.Println("  lox inspect <file>             Summarize classes and functions")
	fmt.Println("  lox serve [-addr host:port]    Serve REPL sessions over WebSocket")
	fmt.Println("  lox hash <password>            Print a bcrypt hash for LOX_PASSWORD_HASH")
	fmt.Println("  lox version                    Display build metadata")
	fmt.Println("  lox help                       Show this help message")
	fmt.Println()
	fmt.Println("Global flags:")
	fmt.Println("  --help, -h                     Show help")
	fmt.Println("  --version, -v                  Show version")
	fmt.Println()
	fmt.Println("Exit codes: 64 usage, 65 syntax or resolution error, 70 runtime error.")
}
