package main

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aristanetworks/anta/pkg/inventory"
	"github.com/aristanetworks/anta/pkg/util"
	"github.com/aristanetworks/anta/pkg/version"

	// Register the built-in test catalog.
	_ "github.com/aristanetworks/anta/pkg/checks"
)

var (
	inventoryPath string
	usernameFlag  string
	passwordFlag  string
	promptFlag    bool
	insecureFlag  bool
	timeoutFlag   time.Duration
	logLevelFlag  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "anta",
		Short: "Network test automation",
		Long: `Anta runs a catalog of declarative tests against the devices of an
inventory over their JSON-RPC management API and reports the results.

  anta check -c catalog.yaml                  # validate a catalog
  anta nrfu -i inventory.yaml -c catalog.yaml # run the catalog
  anta exec -i inventory.yaml "show version"  # ad-hoc command`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return util.SetLogLevel(logLevelFlag)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&inventoryPath, "inventory", "i", "inventory.yaml", "Inventory file")
	rootCmd.PersistentFlags().StringVarP(&usernameFlag, "username", "u", "admin", "Device API username")
	rootCmd.PersistentFlags().StringVarP(&passwordFlag, "password", "p", "", "Device API password")
	rootCmd.PersistentFlags().BoolVar(&promptFlag, "prompt", false, "Prompt for the device API password")
	rootCmd.PersistentFlags().BoolVar(&insecureFlag, "insecure", false, "Skip TLS certificate verification")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 30*time.Second, "Device API timeout")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "Log level (debug, info, warning, error)")

	rootCmd.AddCommand(
		newNrfuCmd(),
		newCheckCmd(),
		newExecCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("anta %s\n", version.Info())
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadInventory reads the inventory file with the shared connection flags,
// prompting for the password when requested.
func loadInventory() (*inventory.Inventory, error) {
	password := passwordFlag
	if promptFlag {
		fmt.Fprint(os.Stderr, "Device API password: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("reading password: %w", err)
		}
		password = string(raw)
	}

	return inventory.Load(inventoryPath, inventory.Options{
		Username: usernameFlag,
		Password: password,
		Timeout:  timeoutFlag,
		Insecure: insecureFlag,
	})
}
