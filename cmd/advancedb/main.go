// Command advancedb is the database entry point. It runs a plain REPL
// by default, an HTTP API with -serve, or a full-screen terminal UI
// with -tui. Data lives as one B+ tree file per table under -data.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ItsPalash13/AdvanceDB/internal/engine"
	"github.com/ItsPalash13/AdvanceDB/internal/logging"
	"github.com/ItsPalash13/AdvanceDB/internal/sql/executor"
	"github.com/ItsPalash13/AdvanceDB/internal/tui"
	"github.com/ItsPalash13/AdvanceDB/internal/web"
)

const version = "0.3.0"

var dotCommands = map[string]string{
	".help":    "Show this help message",
	".tables":  "List all tables",
	".schema":  "Show the schema of every table",
	".stats":   "Show B+ tree statistics per table",
	".explain": "Show the plan for the statement that follows",
	".quit":    "Exit",
}

func main() {
	dataDir := flag.String("data", "data", "Directory holding table files")
	serveAddr := flag.String("serve", "", "Serve the HTTP API on this address instead of the REPL")
	useTUI := flag.Bool("tui", false, "Start the full-screen terminal UI")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "text", "Log format: text or json")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("advancedb %s\n", version)
		return
	}

	if err := logging.Init(logging.Config{Level: *logLevel, Format: *logFormat}); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	store, err := engine.OpenStore(*dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	session := executor.NewSession(store)

	switch {
	case *serveAddr != "":
		if err := web.NewServer(*serveAddr, session, store).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	case *useTUI:
		if err := tui.Run(session); err != nil {
			fmt.Fprintf(os.Stderr, "tui error: %v\n", err)
			os.Exit(1)
		}
	default:
		repl(session, store)
	}
}

// repl reads statements line by line, accumulating until a line ends
// with a semicolon or a dot command is given.
func repl(session *executor.Session, store *engine.Store) {
	fmt.Printf("advancedb %s\nType '.help' for usage, '.quit' to exit.\n\n", version)

	reader := bufio.NewReader(os.Stdin)
	var input strings.Builder

	for {
		if input.Len() == 0 {
			fmt.Print("advancedb> ")
		} else {
			fmt.Print("      ...> ")
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Println()
				return
			}
			fmt.Fprintf(os.Stderr, "read error: %v\n", err)
			return
		}
		line = strings.TrimSpace(line)

		if input.Len() == 0 && strings.HasPrefix(line, ".") {
			if done := runDotCommand(line, session, store); done {
				return
			}
			continue
		}
		if line == "" {
			continue
		}

		input.WriteString(line)
		input.WriteString(" ")
		if !strings.HasSuffix(line, ";") {
			continue
		}

		sql := strings.TrimSpace(input.String())
		input.Reset()

		result, err := session.Execute(sql)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Println(executor.FormatResult(result))
	}
}

// runDotCommand handles the REPL's administrative commands; it
// reports true when the REPL should exit.
func runDotCommand(line string, session *executor.Session, store *engine.Store) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ".quit", ".exit":
		return true
	case ".help":
		for _, cmd := range []string{".help", ".tables", ".schema", ".stats", ".explain", ".quit"} {
			fmt.Printf("  %-9s %s\n", cmd, dotCommands[cmd])
		}
	case ".tables":
		for _, name := range store.Tables() {
			fmt.Println(name)
		}
	case ".schema":
		for _, name := range store.Tables() {
			schema, err := store.Schema(name)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Printf("%s:\n", name)
			for _, col := range schema.Columns {
				attrs := ""
				if col.PrimaryKey {
					attrs += " PRIMARY KEY"
				} else if col.NotNull {
					attrs += " NOT NULL"
				}
				fmt.Printf("  %s %s%s\n", col.Name, col.Type, attrs)
			}
		}
	case ".stats":
		for _, name := range store.Tables() {
			stats, err := store.Stats(name)
			if err != nil {
				fmt.Printf("%s: error: %v\n", name, err)
				continue
			}
			fmt.Printf("%s: %d records, %d leaf pages, %d internal pages, depth %d\n",
				name, stats.Records, stats.LeafPages, stats.InternalPages, stats.Depth)
		}
	case ".explain":
		sql := strings.TrimSpace(strings.TrimPrefix(line, ".explain"))
		if sql == "" {
			fmt.Println("usage: .explain <statement>")
			break
		}
		plan, err := session.Explain(sql)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			break
		}
		fmt.Print(plan)
	default:
		fmt.Printf("unknown command %s (try .help)\n", fields[0])
	}
	return false
}
