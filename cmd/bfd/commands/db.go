package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openbfd/bfd/am"
	"github.com/openbfd/bfd/db"
	"github.com/openbfd/bfd/sym"
)

// DbCmd represents the db command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: sym.DB + " Database maintenance",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := am.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		database, err := db.Open(cfg.Database.Path, nil)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()
		if err := db.Migrate(database, nil); err != nil {
			return err
		}
		fmt.Printf("%s migrations applied\n", sym.DB)
		return nil
	},
}

var dbRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the current-value projection from the event log",
	Long: sym.DB + ` rebuild — Replay the append-only event log into tag_values

The event log is the source of truth; the projection is a cache. Run
this after a crash or suspected projection drift. Replay halts with an
integrity error if a stored event no longer decodes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.close()
		if err := e.store.Rebuild(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("%s projection rebuilt\n", sym.DB)
		return nil
	},
}

func init() {
	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbRebuildCmd)
}
