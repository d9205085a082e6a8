package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catalogbridge/ckan2csw/internal/output"
)

// NewConfigShowCmd creates the config show command.
func NewConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show every configuration key with its effective value and where it came
from: flag, env, config or default.`,
		Args: cobra.NoArgs,
		RunE: runConfigShow,
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	t := output.NewTable("KEY", "VALUE", "SOURCE")
	for _, rv := range loader.Resolved() {
		value := ""
		if rv.Value != nil {
			value = fmt.Sprint(rv.Value)
		}
		t.Row(rv.Key, value, string(rv.Source))
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.String())
	return nil
}
