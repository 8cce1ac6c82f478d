package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bot",
	Short: "Telegram bot that tags notes and files them in a spreadsheet",
	Long: `bot walks a chat user through picking emotions and tags for a note,
then stores the note in the user's spreadsheet.

Available subcommands:
  serve   - Run the bot
  options - Inspect or extend a user's option lists`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, optionsCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
