package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	tokenutil "kora/internal/shared/token"
	"kora/internal/types"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <session-id>",
	Short: "Show the conversation turns of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newManager()
		if err := mgr.LoadSession(cmd.Context(), args[0]); err != nil {
			return err
		}

		turns, err := mgr.ConversationSummary(historyLimit)
		if err != nil {
			return err
		}

		userColor := color.New(color.FgGreen, color.Bold)
		assistantColor := color.New(color.FgBlue, color.Bold)
		metaColor := color.New(color.Faint)

		for i, turn := range turns {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("%s %s\n", userColor.Sprintf("%s>", turn.UserMessage.Sender), indent(turn.UserMessage.Rendered()))
			if turn.AssistantResponse != nil {
				fmt.Printf("%s %s\n", assistantColor.Sprintf("%s>", turn.AssistantResponse.Sender), indent(turn.AssistantResponse.Rendered()))
			}
			fmt.Println(metaColor.Sprintf("  [%s | est. %d tokens | cl100k %d]",
				turn.Timestamp.Format("2006-01-02 15:04:05"),
				turn.TokensUsed,
				exactTurnTokens(turn.UserMessage.Content, turn.AssistantResponse)))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "show only the most recent N turns")
}

func indent(text string) string {
	return strings.ReplaceAll(text, "\n", "\n  ")
}

func exactTurnTokens(userContent string, response *types.Message) int {
	total := tokenutil.CountTokens(userContent)
	if response != nil {
		total += tokenutil.CountTokens(response.Content)
	}
	return total
}
