// fraksi - IDX tick size, auto-rejection and position planning calculators
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"fraksi/internal/config"
	"fraksi/internal/presenter"
	"fraksi/internal/rejection"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		msg := err.Error()
		if rejection.IsRejection(err) {
			msg = presenter.Message(err)
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "fraksi",
		Short: "IDX price fraction and trading plan calculators",
		Long: `fraksi computes IDX tick sizes, auto-rejection limits and price ladders,
plans trailing stops and partial exits, and projects capital growth.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(a.configPath)
			if err != nil {
				return fmt.Errorf("cannot load config: %w", err)
			}
			a.cfg = cfg
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", ".", "Directory holding config.yaml")

	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(tickCmd())
	rootCmd.AddCommand(bandCmd())
	rootCmd.AddCommand(ladderCmd())
	rootCmd.AddCommand(trailingCmd())
	rootCmd.AddCommand(simulateCmd(a))
	rootCmd.AddCommand(exitCmd())
	rootCmd.AddCommand(dividendCmd(a))
	rootCmd.AddCommand(serveCmd(a))

	return rootCmd
}

// newLogger builds the process logger from the log settings.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
