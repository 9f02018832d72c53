package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"interactbot/pkg/commands"
	"interactbot/pkg/fileutil"
	"interactbot/pkg/handlers"
	"interactbot/pkg/logger"
	"interactbot/pkg/router"
)

var (
	exportFormat string
	exportOutput string
)

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "Manage application commands",
	Long:  `Inspect the built-in application commands or push them to the platform.`,
}

var commandsPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Replace the platform's command list with the registered commands",
	Long: `Replace the platform's command list with the registered commands in one
bulk-overwrite call. Commands are pushed to commands.guild_id when it is set.`,
	Run: runCommandsPush,
}

var commandsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the registered commands in wire format",
	Long: `Print the registered commands exactly as they would be pushed.

Examples:
  interactbot commands export
  interactbot commands export --format yaml
  interactbot commands export -o commands.json`,
	Run: runCommandsExport,
}

func init() {
	commandsExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "output format (json, yaml)")
	commandsExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to a file instead of stdout")

	commandsCmd.AddCommand(commandsPushCmd)
	commandsCmd.AddCommand(commandsExportCmd)
}

func runCommandsPush(cmd *cobra.Command, args []string) {
	var (
		registry *commands.Registry
		log      *logger.Logger
	)

	app := fx.New(
		coreModules(),
		fx.Populate(&registry, &log),
		fx.NopLogger,
	)
	if err := app.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := registry.Push(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error pushing commands: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Pushed %d commands.\n", len(registry.List()))
}

func runCommandsExport(cmd *cobra.Command, args []string) {
	registry := commands.NewRegistry(nil, "", logger.Nop())
	if err := handlers.Register(registry, router.New(logger.Nop())); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering commands: %v\n", err)
		os.Exit(1)
	}

	var buf bytes.Buffer
	if err := exportCommands(&buf, registry, exportFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting commands: %v\n", err)
		os.Exit(1)
	}

	if exportOutput == "" {
		_, _ = os.Stdout.Write(buf.Bytes())
		return
	}
	if err := fileutil.WriteFileAtomic(exportOutput, buf.Bytes(), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", exportOutput, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d commands to %s\n", len(registry.List()), exportOutput)
}

// exportCommands writes the wire shape of every registered command.
func exportCommands(w io.Writer, registry *commands.Registry, format string) error {
	data, err := json.MarshalIndent(registry.RawCommands(), "", "  ")
	if err != nil {
		return err
	}

	switch format {
	case "json":
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		// Decoding the JSON keeps its key order and field names.
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return err
		}
		blockStyle(&doc)
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (json, yaml)", format)
	}
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
