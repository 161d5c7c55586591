// Package cli implements the wordchain command line client.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var cfg *Config

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "wordchain",
		Short: "CLI client for the word chain game server",
		Long: `wordchain is a client for the word chain game server's TCP protocol.

It covers account management, score and history queries, and an
interactive play mode for challenging other players and guessing words.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerAddr, "server", cfg.ServerAddr, "Server address (env: WORDCHAIN_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Username, "user", "u", cfg.Username, "Username (env: WORDCHAIN_USER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Password, "pass", "p", cfg.Password, "Password (env: WORDCHAIN_PASS)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newSignupCmd())
	rootCmd.AddCommand(newUsersCmd())
	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newDetailCmd())
	rootCmd.AddCommand(newPlayCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// withClient dials the server, runs fn, and closes the connection.
func withClient(fn func(*Client, *Output) error) error {
	out := NewOutput(cfg.Output)

	client, err := Dial(cfg.ServerAddr)
	if err != nil {
		out.PrintError(err)
		return err
	}
	defer client.Close()

	if err := fn(client, out); err != nil {
		out.PrintError(err)
		return err
	}
	return nil
}

// withLogin is withClient plus a login using the configured credentials.
func withLogin(fn func(*Client, *Output) error) error {
	return withClient(func(client *Client, out *Output) error {
		if err := client.Login(cfg.Username, cfg.Password); err != nil {
			return err
		}
		return fn(client, out)
	})
}
