package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aristanetworks/anta/pkg/cli"
	"github.com/aristanetworks/anta/pkg/model"
	"github.com/aristanetworks/anta/pkg/util"
)

func newExecCmd() *cobra.Command {
	var (
		textFormat bool
		deviceTags []string
	)

	cmd := &cobra.Command{
		Use:   "exec <command>",
		Short: "Run an ad-hoc command on every device of the inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := loadInventory()
			if err != nil {
				return err
			}

			devices := inv.Devices()
			if len(deviceTags) > 0 {
				devices = inv.WithTags(deviceTags)
			}
			if len(devices) == 0 {
				return fmt.Errorf("no device matches tags %v", deviceTags)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			failed := 0
			for _, dev := range devices {
				if !dev.ConnectCheck(ctx) {
					failed++
					fmt.Printf("%s %s (%s)\n", cli.Bold("---"), dev.Name, dev.Addr())
					fmt.Printf("%s %v\n", cli.Red("skipped:"), util.ErrNotConnected)
					continue
				}
				c := model.NewCommand(args[0])
				if textFormat {
					c = model.NewTextCommand(args[0])
				}
				if err := dev.RunSuppress(ctx, c); err != nil {
					return err
				}
				fmt.Printf("%s %s (%s)\n", cli.Bold("---"), dev.Name, dev.Addr())
				switch {
				case c.Err != nil:
					failed++
					fmt.Printf("%s %v\n", cli.Red("command failed:"), c.Err)
				case textFormat:
					fmt.Println(c.TextOut)
				default:
					out, err := json.MarshalIndent(c.Output, "", "  ")
					if err != nil {
						return err
					}
					fmt.Println(string(out))
				}
			}

			if failed > 0 {
				util.Warnf("command failed on %d of %d devices", failed, len(devices))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&textFormat, "text", false, "Request text output instead of JSON")
	cmd.Flags().StringSliceVar(&deviceTags, "tags", nil, "Only run on devices carrying one of these tags")
	return cmd
}
