package cli

import (
	"github.com/hmngo/wordchain/internal/protocol"
	"github.com/spf13/cobra"
)

func newSignupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signup USERNAME PASSWORD",
		Short: "Create a new account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(client *Client, out *Output) error {
				reply, err := client.CallOK(protocol.SignupRequest, args[0]+"|"+args[1])
				if err != nil {
					return err
				}
				out.PrintMessage(reply.Payload)
				return nil
			})
		},
	}
}

func newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List players currently online",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLogin(func(client *Client, out *Output) error {
				reply, err := client.CallOK(protocol.ListUser, "")
				if err != nil {
					return err
				}
				out.PrintRecords(reply.Payload, "username", "score")
				return nil
			})
		},
	}
}

func newScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score USERNAME",
		Short: "Show a player's score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLogin(func(client *Client, out *Output) error {
				reply, err := client.CallOK(protocol.GetScoreByUser, args[0])
				if err != nil {
					return err
				}
				out.PrintRecords(reply.Payload, "username", "score")
				return nil
			})
		},
	}
}

func newLeaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard USERNAME",
		Short: "List players ranked by score proximity to a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLogin(func(client *Client, out *Output) error {
				reply, err := client.CallOK(protocol.GameScore, args[0])
				if err != nil {
					return err
				}
				out.PrintRecords(reply.Payload, "username", "score")
				return nil
			})
		},
	}
}
