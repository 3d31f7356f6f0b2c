// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command handlers for ava.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.3.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdLogin
	CmdLogout
	CmdLock
	CmdBots
	CmdHistory
	CmdConfig
	CmdStatus
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Bot      string // --bot: answer with a specific bot
	Continue bool   // --continue: resume the latest conversation
	JSON     bool   // --json: machine-readable output
	Quiet    bool   // --quiet: suppress trailer lines
	Verbose  bool   // --verbose: debug detail on stderr

	// Command-specific
	Question   string // ask: the question text
	File       string // ask: file to append, "-" for stdin
	Token      string // login: bearer token
	Format     string // history export: md or json
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `ava - the Vocus assistant in your terminal

Ava answers questions from company knowledge: policies, Confluence
pages and internal documents, with citations back to the sources.

Usage:
  ava                        Start the chat TUI (default)
  ava "question"             Shortcut for ava ask
  ava ask "question"         Ask once, print the answer, exit
  ava chat                   Line-mode chat (pipes, SSH, dumb terminals)
  ava login [--token T]      Store a bearer token for this machine
  ava logout                 Forget the stored token
  ava lock [enable|disable]  Authenticator-app lock on the stored token
  ava bots                   List available bots
  ava history [subcommand]   Saved conversations
  ava status, s              Backend and login status
  ava config [show|path|set] Configuration
  ava version                Version information
  ava help                   This help

Ask Flags:
  -f, --file FILE   Append a file to the question ("-" reads stdin)

History Commands:
  ava history                 List saved conversations
  ava history show <n>        Print conversation n
  ava history export <n>      Export conversation n to stdout
    --format md|html|json     Export format (default: md)
  ava history search <text>   Search titles, messages and citations
  ava history delete <n>      Delete conversation n
  ava history clear           Delete all saved conversations

Global Flags:
  -b, --bot ID      Answer with a specific bot (see: ava bots)
  --continue        Resume the most recent conversation (TUI)
  --json            Output in JSON where supported
  -q, --quiet       Suppress sources and stats trailers
  -v, --verbose     Debug detail on stderr

Environment:
  AVA_BACKEND_URL   Backend base URL (overrides config)
  AVA_TOKEN         Bearer token (overrides the stored login)
  AVA_BOT           Default bot ID
  NO_COLOR          Disable colored output

Examples:
  ava ask "What is the Data Loss Prevention policy?"
  ava ask -b tender "Summarize the mandatory response sections"
  ava ask "Review these notes:" --file notes.md
  ava ask --json "List the leave types" | jq -r .data.answer
  ava history export 2 --format json > review.json
  ava --continue

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("ava version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Go version: %s\n", runtime.Version())
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given argument list. Split out from Parse so
// tests can drive it without touching os.Args.
func ParseArgs(argv []string) (Command, Args) {
	// Parse global flags first
	remaining, parsedArgs := parseGlobalFlags(argv)

	// If no remaining args, default to TUI
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	// Check first argument for command
	first := remaining[0]
	cmd := strings.ToLower(first)
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat":
		return CmdChat, parsedArgs

	case "login":
		parseLoginArgs(&parsedArgs, remaining)
		return CmdLogin, parsedArgs

	case "logout":
		return CmdLogout, parsedArgs

	case "lock":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
			parsedArgs.Raw = remaining[1:]
		}
		return CmdLock, parsedArgs

	case "bots":
		return CmdBots, parsedArgs

	case "history", "conversations":
		parseHistoryArgs(&parsedArgs, remaining)
		return CmdHistory, parsedArgs

	case "config":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
			parsedArgs.Raw = remaining[1:]
		}
		return CmdConfig, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "version", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Bare text is treated as a question: `ava "what is X"` works
		// without spelling out ask. Anything starting with a dash is an
		// unrecognized flag and gets the help text instead.
		if strings.HasPrefix(cmd, "-") {
			return CmdHelp, parsedArgs
		}
		parseAskArgs(&parsedArgs, append([]string{first}, remaining...))
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-b", "--bot":
			if i+1 < len(args) {
				i++
				parsedArgs.Bot = args[i]
			}
		case "--continue", "-c":
			parsedArgs.Continue = true
		case "--json":
			parsedArgs.JSON = true
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		default:
			// Check for --bot=value format
			if strings.HasPrefix(arg, "--bot=") {
				parsedArgs.Bot = strings.TrimPrefix(arg, "--bot=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	i := 0
	for i < len(remaining) {
		arg := remaining[i]

		switch arg {
		case "-f", "--file":
			if i+1 < len(remaining) {
				i++
				args.File = remaining[i]
			}
		default:
			if strings.HasPrefix(arg, "--file=") {
				args.File = strings.TrimPrefix(arg, "--file=")
			} else if !strings.HasPrefix(arg, "--") {
				query = append(query, arg)
			}
		}
		i++
	}

	args.Question = strings.Join(query, " ")
}

// parseLoginArgs parses login command specific arguments.
func parseLoginArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch arg {
		case "-t", "--token":
			if i+1 < len(remaining) {
				i++
				args.Token = remaining[i]
			}
		default:
			if strings.HasPrefix(arg, "--token=") {
				args.Token = strings.TrimPrefix(arg, "--token=")
			}
		}
	}
}

// parseHistoryArgs parses history command specific arguments.
func parseHistoryArgs(args *Args, remaining []string) {
	args.Format = "md"

	var positional []string
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch arg {
		case "--format":
			if i+1 < len(remaining) {
				i++
				args.Format = strings.ToLower(remaining[i])
			}
		default:
			if strings.HasPrefix(arg, "--format=") {
				args.Format = strings.ToLower(strings.TrimPrefix(arg, "--format="))
			} else if !strings.HasPrefix(arg, "-") {
				positional = append(positional, arg)
			}
		}
	}

	if len(positional) > 0 {
		args.Subcommand = strings.ToLower(positional[0])
		args.Raw = positional[1:]
	} else {
		args.Subcommand = "list"
		args.Raw = nil
	}
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// HandleVersion handles the "version" command.
func HandleVersion(args Args) {
	if args.JSON {
		data := map[string]string{
			"version":    Version,
			"git_commit": GitCommit,
			"build_date": BuildDate,
			"go_version": runtime.Version(),
		}
		resp := NewJSONResponse("version", data)
		resp.Print()
		return
	}
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
