package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/demoskill"
	"github.com/aretw0/parley/internal/presentation/tui"
	"github.com/aretw0/parley/pkg/domain"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the demo skill in the terminal",
	Long: `Starts an interactive conversation with the bundled meeting-room skill.
With a Redis store configured the conversation survives restarts: pass the
same --conversation id to resume where you left off.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		logger := newLogger(cfg)

		eng, err := demoskill.NewEngine(engineOptions(cfg, logger)...)
		if err != nil {
			fmt.Printf("Error initializing parley: %v\n", err)
			os.Exit(1)
		}

		conversationID, _ := cmd.Flags().GetString("conversation")
		if conversationID == "" {
			conversationID = uuid.NewString()
		}

		interactive := term.IsTerminal(int(os.Stdin.Fd()))
		if interactive {
			tui.PrintBanner(parley.Version)
			fmt.Printf("Conversation: %s (type 'exit' to leave)\n\n", conversationID)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		render := tui.NewRenderer()
		printReplies := func(replies []domain.Activity) bool {
			done := false
			for _, a := range replies {
				if a.Type == domain.ActivityEndOfConversation {
					done = true
					continue
				}
				text := a.Text
				if interactive {
					if out, err := render(text); err == nil {
						text = out
					}
				}
				fmt.Println(strings.TrimRight(text, "\n"))
			}
			return done
		}

		// An empty opening turn yields the skill's welcome.
		replies, err := eng.ProcessTurn(ctx, conversationID, domain.MessageTurn(""))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		printReplies(replies)

		scanner := bufio.NewScanner(os.Stdin)
		for {
			if interactive {
				fmt.Print("> ")
			}
			if !scanner.Scan() {
				break
			}
			text := strings.TrimSpace(scanner.Text())
			if text == "exit" || text == "quit" {
				break
			}

			replies, err := eng.ProcessTurn(ctx, conversationID, domain.MessageTurn(text))
			if err != nil {
				if ctx.Err() != nil {
					break
				}
				fmt.Printf("Error: %v\n", err)
				continue
			}
			if printReplies(replies) {
				break
			}
		}

		if interactive {
			fmt.Println("\nBye!")
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("conversation", "", "Conversation id to resume (default: a fresh one)")
}
