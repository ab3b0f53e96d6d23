// Package cli implements the patchbay command-line interface.
//
// This package provides commands for running the document server,
// creating and inspecting canvas documents, and exporting them as
// node-link diagrams. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - serve: Run the HTTP/WebSocket document service
//   - init: Write a starter document for experimenting
//   - export: Render a document file to DOT, SVG, or PNG
//   - inspect: Validate a document and show its statistics
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
// Loggers are passed through context.Context so long-running
// operations can report structured progress.
//
// # Example
//
//	import "github.com/patchbaylabs/patchbay/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/patchbaylabs/patchbay/pkg/buildinfo"
)

// appName is the application name used for directories and display.
const appName = "patchbay"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config override; empty means the standard
	// resolution order (env var, then XDG config directory).
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Patchbay is a collaborative node-canvas document server",
		Long:         `Patchbay serves node-canvas documents over HTTP and WebSocket: a shared editing session per document with undo/redo history, automatic group layout, and diagram export.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config file")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.initCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.completionCommand())

	return root
}
