// Command kora is the inspection CLI for the conversation memory engine:
// listing, displaying and pruning persisted sessions. Chat itself happens in
// the host assistant; this binary only operates on the session store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kora/internal/config"
	"kora/internal/memory"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "kora",
	Short: "Inspect and maintain kora conversation sessions",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
	SilenceUsage: true,
}

func newManager() *memory.Manager {
	return memory.NewManager(cfg.Memory)
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: ~/.kora/config.yaml)")
	rootCmd.AddCommand(sessionsCmd, historyCmd, pruneCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
