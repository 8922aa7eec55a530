package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ixink/uiu-student-bot/internal/record"
)

var (
	flagUser int64
	flagTerm string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Print composed recommendations for a user",
	Long: `Compose recommendations across the configured source kinds, personalized
by the user's profile. An explicit --term overrides the profile-derived terms.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		text, err := a.svc.Recommend(cmd.Context(), flagUser, flagTerm)
		if err != nil {
			return fmt.Errorf("composing recommendations: %w", err)
		}
		fmt.Print(text)
		return nil
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <kind>",
	Short: "Print one source kind's results",
	Long: "Look up a single source kind (" + strings.Join(kindNames(), ", ") + "), " +
		"filtered by --term or the user's profile.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := record.ParseKind(args[0])
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		text, err := a.svc.Lookup(cmd.Context(), flagUser, kind, flagTerm)
		if err != nil {
			return fmt.Errorf("looking up %s: %w", kind, err)
		}
		fmt.Print(text)
		return nil
	},
}

func kindNames() []string {
	kinds := record.AllKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}

func init() {
	for _, c := range []*cobra.Command{recommendCmd, lookupCmd} {
		c.Flags().Int64Var(&flagUser, "user", 0, "user id")
		c.Flags().StringVar(&flagTerm, "term", "", "override the relevance term")
	}
	recommendCmd.MarkFlagRequired("user")
}
