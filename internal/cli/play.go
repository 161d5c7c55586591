package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/hmngo/wordchain/internal/protocol"
	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Log in and play interactively",
		Long: `Log in and enter interactive mode.

Commands:
  challenge OPPONENT     propose a match
  accept CHALLENGER      accept a pending challenge
  reject CHALLENGER      decline a pending challenge
  cancel OPPONENT        withdraw a challenge you sent
  guess WORD             submit a word in the current match
  target                 show the current word and turn
  end [WINNER]           end the current match
  quit                   log out and exit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLogin(func(client *Client, out *Output) error {
				return runPlay(client, out)
			})
		},
	}
}

// playState is the little bit of match context the frame reader hands to
// the command loop.
type playState struct {
	mu     sync.Mutex
	gameID string
}

func (s *playState) setGame(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameID = id
}

func (s *playState) game() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameID
}

func runPlay(client *Client, out *Output) error {
	state := &playState{}
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			msg, err := client.RecvWait()
			if err != nil {
				return
			}
			printEvent(state, msg)
		}
	}()

	fmt.Printf("Logged in as %s. Type 'help' for commands.\n", cfg.Username)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if quit := runPlayCommand(client, out, state, fields); quit {
			break
		}

		select {
		case <-done:
			out.PrintMessage("connection closed by server")
			return nil
		default:
		}
	}
	return scanner.Err()
}

// runPlayCommand executes one interactive command; returns true on quit.
// Replies arrive through the frame reader goroutine, so commands only
// send.
func runPlayCommand(client *Client, out *Output, state *playState, fields []string) bool {
	me := cfg.Username
	cmd, args := fields[0], fields[1:]

	var err error
	switch cmd {
	case "quit", "exit":
		err = client.Send(protocol.LogoutRequest, me+"|"+cfg.Password)
		return true

	case "help":
		fmt.Println("commands: challenge, accept, reject, cancel, guess, target, end, quit")

	case "challenge":
		if len(args) != 1 {
			out.PrintError(fmt.Errorf("usage: challenge OPPONENT"))
			return false
		}
		err = client.Send(protocol.ChallengeRequest, me+"|"+args[0])

	case "accept":
		if len(args) != 1 {
			out.PrintError(fmt.Errorf("usage: accept CHALLENGER"))
			return false
		}
		err = client.Send(protocol.ChallengeResponse, args[0]+"|"+me+"|ACCEPT")

	case "reject":
		if len(args) != 1 {
			out.PrintError(fmt.Errorf("usage: reject CHALLENGER"))
			return false
		}
		err = client.Send(protocol.ChallengeResponse, args[0]+"|"+me+"|REJECT")

	case "cancel":
		if len(args) != 1 {
			out.PrintError(fmt.Errorf("usage: cancel OPPONENT"))
			return false
		}
		err = client.Send(protocol.ChallengeCancel, me+"|"+args[0])

	case "guess":
		if len(args) == 0 {
			out.PrintError(fmt.Errorf("usage: guess WORD"))
			return false
		}
		gameID := state.game()
		if gameID == "" {
			out.PrintError(fmt.Errorf("no active match"))
			return false
		}
		err = client.Send(protocol.GameGuess, gameID+"|"+me+"|"+strings.Join(args, " "))

	case "target":
		gameID := state.game()
		if gameID == "" {
			out.PrintError(fmt.Errorf("no active match"))
			return false
		}
		err = client.Send(protocol.GameGetTarget, gameID)

	case "end":
		gameID := state.game()
		if gameID == "" {
			out.PrintError(fmt.Errorf("no active match"))
			return false
		}
		payload := gameID
		if len(args) > 0 {
			payload += "|" + args[0]
		}
		err = client.Send(protocol.GameEnd, payload)

	default:
		out.PrintError(fmt.Errorf("unknown command %q", cmd))
	}

	if err != nil {
		out.PrintError(err)
		return true
	}
	return false
}

// printEvent renders one inbound frame in play mode.
func printEvent(state *playState, msg *protocol.Message) {
	fields := strings.Split(msg.Payload, "|")

	switch msg.Type {
	case protocol.ChallengeRequest:
		if msg.Status == protocol.StatusAccepted && len(fields) == 2 && fields[0] != "CHALLENGE_SENT" {
			fmt.Printf("<< %s challenges you! (accept %s / reject %s)\n", fields[0], fields[0], fields[0])
			return
		}
	case protocol.GameStart:
		if len(fields) == 3 {
			state.setGame(fields[0])
			fmt.Printf("<< match %s started, turn %s\n", fields[0], fields[2])
			return
		}
	case protocol.GameUpdate:
		if len(fields) == 3 {
			fmt.Printf("<< word accepted: %s (turn passes to player %s)\n", fields[1], fields[2])
			return
		}
	case protocol.GameEnd:
		if len(fields) == 2 {
			state.setGame("")
			fmt.Printf("<< match over, winner %s (+%s)\n", fields[0], fields[1])
			return
		}
	case protocol.ChallengeCancel:
		if len(fields) == 2 {
			fmt.Printf("<< %s withdrew their challenge\n", fields[0])
			return
		}
	}

	fmt.Printf("<< %s [%d] %s\n", msg.Type, msg.Status, msg.Payload)
}
