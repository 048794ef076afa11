package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openbfd/bfd/am"
)

// AmCmd represents the am command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Show the active configuration",
	Long: `am — Show the active BFD configuration ("I am")

Configuration is read from bfd.toml in the project directory or its
parents, with BFD_* environment variables taking precedence.`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := am.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if jsonOutput(cmd) {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		}
		fmt.Printf("database.path:          %s\n", cfg.Database.Path)
		fmt.Printf("store.retry_attempts:   %d\n", cfg.Store.RetryAttemptsOrDefault())
		fmt.Printf("store.retry_backoff_ms: %d\n", cfg.Store.RetryBackoffMSOrDefault())
		fmt.Printf("log.json:               %v\n", cfg.Log.JSON)
		fmt.Printf("log.verbosity:          %d\n", cfg.Log.Verbosity)
		fmt.Printf("admin.system_admins:    %s\n", strings.Join(cfg.Admin.SystemAdmins, ", "))
		return nil
	},
}

func init() {
	AmCmd.AddCommand(amShowCmd)
}
