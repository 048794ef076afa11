package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openbfd/bfd/am"
	"github.com/openbfd/bfd/cmd/bfd/commands"
	"github.com/openbfd/bfd/logger"
)

var rootCmd = &cobra.Command{
	Use:   "bfd",
	Short: "BFD - collaborative tag annotation datastore",
	Long: `BFD - collaborative, typed tag annotations over named objects.

Objects accumulate typed key/value annotations ("tag values") written under
namespaces with per-tag access control, queryable in bulk with the BFQL
predicate language. Every mutation is an append-only event, so each value
carries its full history.

Available commands:
  query   - Select, update or delete tag values matching a BFQL predicate
  get     - Read the current value of one tag on one object
  set     - Write a tag value
  rm      - Delete a tag value
  ls      - List an object's tags
  history - Show the event history of one (object, tag) pair
  ns      - Manage namespaces and their admins
  tag     - Manage tag declarations and whitelists
  db      - Database maintenance (migrate, rebuild projection)
  am      - Show the active configuration ("I am")

Examples:
  bfd query 'library/summary matches "whales"'
  bfd set o1 library/title "Moby Dick"
  bfd query 'has library/title and missing library/summary' --set library/needs-summary=true
  bfd history o1 library/title`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		cfg, err := am.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if verbosity < cfg.Log.Verbosity {
			verbosity = cfg.Log.Verbosity
		}
		if err := logger.InitializeWithLevel(cfg.Log.JSON, logger.VerbosityToLevel(verbosity)); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().String("actor", "", "Acting user identity (default: current OS user, or BFD_ACTOR)")
	rootCmd.PersistentFlags().Bool("json", false, "Emit results as JSON")

	rootCmd.AddCommand(commands.QueryCmd)
	rootCmd.AddCommand(commands.GetCmd)
	rootCmd.AddCommand(commands.SetCmd)
	rootCmd.AddCommand(commands.RmCmd)
	rootCmd.AddCommand(commands.LsCmd)
	rootCmd.AddCommand(commands.HistoryCmd)
	rootCmd.AddCommand(commands.NsCmd)
	rootCmd.AddCommand(commands.TagCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.AmCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
