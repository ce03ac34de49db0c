package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aristanetworks/anta/pkg/catalog"
	"github.com/aristanetworks/anta/pkg/cli"
)

func newCheckCmd() *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a test catalog file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(catalogPath, catalog.Default)
			if err != nil {
				return err
			}

			table := cli.NewTable(os.Stdout, "TEST", "GROUP", "TAGS")
			for _, entry := range cat.Entries() {
				tags := strings.Join(entry.FilterTags(), ",")
				if tags == "" {
					tags = "-"
				}
				table.Row(entry.Reg.Name, entry.Reg.Group, tags)
			}
			table.Flush()

			fmt.Printf("\n%s: %d tests, no errors\n", catalogPath, cat.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&catalogPath, "catalog", "c", "catalog.yaml", "Test catalog file")
	return cmd
}
