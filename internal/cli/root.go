// Package cli implements plannerctl, the operator command line for the itinerary planner.
package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
)

// NewRootCmd builds a fresh plannerctl command tree.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:     "plannerctl",
		Version: version,
		Short:   "Operator tools for the itinerary planner",
		Long: `plannerctl prices catalog offers without a running API and applies
the Postgres schema migrations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")
	root.AddCommand(newQuoteCmd(), newMigrateCmd())
	return root
}

// Execute runs plannerctl with the process arguments.
func Execute(version string) error {
	return NewRootCmd(version).Execute()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
