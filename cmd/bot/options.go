package main

import (
	"fmt"
	"io"
	"strings"

	"tg-notes-bot/internal/config"
	"tg-notes-bot/internal/pkg/logger"
	"tg-notes-bot/internal/repository/file"
	"tg-notes-bot/pkg/identity"
	"tg-notes-bot/pkg/store"

	"github.com/spf13/cobra"
)

var (
	optionsUser     string
	optionsCategory string
)

// optionsCmd is the parent command for option list maintenance
var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Inspect or extend a user's option lists",
}

var optionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print both option lists of a user with their indices",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return listOptions(cmd.OutOrStdout(), newOptionRepository(), optionsUser)
	},
}

var optionsAddCmd = &cobra.Command{
	Use:   "add \"<value, value, ...>\"",
	Short: "Append comma-separated values to a user's option list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := parseCategory(optionsCategory)
		if err != nil {
			return err
		}
		return addOptions(cmd.OutOrStdout(), newOptionRepository(), optionsUser, category, strings.Join(args, " "))
	},
}

func init() {
	optionsCmd.PersistentFlags().StringVar(&optionsUser, "user", "", "user folder, e.g. SergeyAY")
	_ = optionsCmd.MarkPersistentFlagRequired("user")
	optionsAddCmd.Flags().StringVar(&optionsCategory, "category", "", "emotions or tags")
	_ = optionsAddCmd.MarkFlagRequired("category")

	optionsCmd.AddCommand(optionsListCmd, optionsAddCmd)
}

func newOptionRepository() *file.OptionRepository {
	cfg := config.Load()
	return file.NewOptionRepository(cfg.App.DataDir, logger.NewConsoleLogger())
}

func parseCategory(raw string) (store.Category, error) {
	for _, c := range store.Categories {
		if strings.EqualFold(raw, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q (want emotions or tags)", raw)
}

func listOptions(w io.Writer, repo *file.OptionRepository, user string) error {
	folder := identity.Sanitize(user)
	emotions, tags := repo.Load(folder)

	for _, c := range store.Categories {
		values := emotions
		if c == store.CategoryTags {
			values = tags
		}
		fmt.Fprintf(w, "%s (%s):\n", c.Label(), repo.Path(folder, c))
		for i, v := range values {
			fmt.Fprintf(w, "  %d. %s\n", i, v)
		}
	}
	return nil
}

func addOptions(w io.Writer, repo *file.OptionRepository, user string, category store.Category, raw string) error {
	folder := identity.Sanitize(user)
	values, err := repo.Append(folder, category, raw)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Added %d value(s) to %s\n", len(values), repo.Path(folder, category))
	return nil
}
