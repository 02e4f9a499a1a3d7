// dispatchctl inspects the incident dispatch state from a shell: incident
// urgency, referral eligibility and assignment checks.
//
// Usage:
//
//	dispatchctl urgent [--station=<id>]
//	dispatchctl eligibility <station>
//	dispatchctl options <station>
//	dispatchctl validate --station=<id> --department=<id> [--unit=<id>]
//
// Data is read from a YAML seed file (--seed) or from the database named in
// the keybox (--secrets).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	seed     string
	secrets  string
	markdown bool
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispatchctl",
		Short: "Inspect fire-service incident dispatch state",
		Long:  "dispatchctl ranks ongoing incidents, checks referral eligibility of stations\nand validates department and unit assignments.",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage: true,
		Version:      version,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&rootFlags.seed, "seed", "", "Path to a YAML seed file to read data from")
	f.StringVar(&rootFlags.secrets, "secrets", "secrets.json", "Path to the keybox holding databaseURI")
	f.BoolVar(&rootFlags.markdown, "markdown", false, "Render tables as Markdown")

	cmd.AddCommand(newUrgentCmd())
	cmd.AddCommand(newEligibilityCmd())
	cmd.AddCommand(newOptionsCmd())
	cmd.AddCommand(newValidateCmd())
	return cmd
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
