// Package sources implements the sources command for inspecting the
// configured source registry.
package sources

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsharvest/cmd/common"
)

// Command returns the sources command for use in the root command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage configured news sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(listCommand())
	return cmd
}

// listCommand prints the registry entries.
func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured sources",
		RunE: func(_ *cobra.Command, _ []string) error {
			deps, err := common.NewDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			for _, src := range deps.Registry.All() {
				state := "active"
				if !src.Active {
					state = "inactive"
				}

				fmt.Printf("%-12s %-24s %-10s %s\n", src.Slug, src.Name, state, src.BaseURL)
				if len(src.CategoryAllowlist) > 0 {
					fmt.Printf("%-12s allowlist: %s\n", "", strings.Join(src.CategoryAllowlist, ", "))
				}
			}

			return nil
		},
	}
}
