package cli

import (
	"fmt"
	"strings"

	"github.com/hmngo/wordchain/internal/protocol"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history PLAYER",
		Short: "List a player's finished matches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLogin(func(client *Client, out *Output) error {
				reply, err := client.CallOK(protocol.ListGameHistory, args[0])
				if err != nil {
					return err
				}
				out.PrintRecords(reply.Payload, "game", "player1", "player2", "winner", "reason")
				return nil
			})
		},
	}
}

func newDetailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detail GAME_ID",
		Short: "Show one match record including its moves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLogin(func(client *Client, out *Output) error {
				reply, err := client.CallOK(protocol.GameDetailRequest, args[0])
				if err != nil {
					return err
				}
				printDetail(out, reply.Payload)
				return nil
			})
		},
	}
}

// printDetail renders the pipe-delimited match record payload.
func printDetail(out *Output, payload string) {
	fields := strings.Split(payload, "|")
	if len(fields) < 11 {
		out.PrintMessage(payload)
		return
	}

	labels := []string{
		"game", "player1", "player2", "score1", "score2",
		"winner", "final word", "reason", "started", "ended",
	}
	for i, label := range labels {
		fmt.Printf("%-11s %s\n", label+":", fields[i])
	}

	fmt.Println("moves:")
	out.PrintRecords(fields[10], "player", "word", "result")
}
