package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aristanetworks/anta/pkg/catalog"
	"github.com/aristanetworks/anta/pkg/inventory"
	"github.com/aristanetworks/anta/pkg/model"
	"github.com/aristanetworks/anta/pkg/report"
	"github.com/aristanetworks/anta/pkg/runner"
	"github.com/aristanetworks/anta/pkg/util"
)

func newNrfuCmd() *cobra.Command {
	var (
		catalogPath string
		limit       int
		deviceTags  []string
		tests       []string
		format      string
		outputPath  string
		historyPath string
	)

	cmd := &cobra.Command{
		Use:   "nrfu",
		Short: "Run the test catalog against the inventory",
		Long: `Runs every applicable test of the catalog on every device of the
inventory and reports the results. The exit code is non-zero when any
test failed or errored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := loadInventory()
			if err != nil {
				return err
			}
			cat, err := catalog.Load(catalogPath, catalog.Default)
			if err != nil {
				return err
			}
			cat.BuildIndexes(tests)

			if len(deviceTags) > 0 {
				inv, err = scopeInventory(inv, deviceTags)
				if err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			r := runner.New(inv, cat, limit)
			if err := r.Run(ctx); err != nil {
				return err
			}

			out := io.Writer(os.Stdout)
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("creating report file: %w", err)
				}
				defer f.Close()
				out = f
			}

			switch format {
			case "table":
				err = report.WriteTable(out, r.Manager)
			case "json":
				err = report.WriteJSON(out, r.Manager)
			case "junit":
				err = report.WriteJUnit(out, r.Manager)
			case "md":
				err = report.WriteMarkdown(out, r.Manager)
			default:
				return fmt.Errorf("unknown report format %q (table, json, junit, md)", format)
			}
			if err != nil {
				return err
			}

			if historyPath != "" {
				hist, err := report.OpenHistory(historyPath)
				if err != nil {
					return err
				}
				defer hist.Close()
				runID, err := hist.SaveRun(ctx, r.Manager)
				if err != nil {
					return err
				}
				util.Infof("run saved to %s as run %d", historyPath, runID)
			}

			if r.Manager.ErrorStatus() {
				return fmt.Errorf("run finished with errors")
			}
			if status := r.Manager.Status(); status == model.StatusFailure {
				return fmt.Errorf("run finished with status %s", status)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&catalogPath, "catalog", "c", "catalog.yaml", "Test catalog file")
	cmd.Flags().IntVar(&limit, "limit", runner.DefaultLimit, "Maximum number of tests in flight across all devices")
	cmd.Flags().StringSliceVar(&deviceTags, "tags", nil, "Only run on devices carrying one of these tags")
	cmd.Flags().StringSliceVar(&tests, "tests", nil, "Only run these tests")
	cmd.Flags().StringVar(&format, "format", "table", "Report format (table, json, junit, md)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVar(&historyPath, "save-db", "", "Append the run to a sqlite history database")

	return cmd
}

// scopeInventory narrows an inventory to the devices carrying at least one of
// the given tags.
func scopeInventory(inv *inventory.Inventory, tags []string) (*inventory.Inventory, error) {
	scoped := inventory.New()
	for _, dev := range inv.WithTags(tags) {
		if err := scoped.Add(dev); err != nil {
			return nil, err
		}
	}
	if scoped.Len() == 0 {
		return nil, fmt.Errorf("no device matches tags %v", tags)
	}
	return scoped, nil
}
