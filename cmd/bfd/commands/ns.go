package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openbfd/bfd/sym"
)

// NsCmd represents the ns command
var NsCmd = &cobra.Command{
	Use:   "ns",
	Short: sym.Perm + " Manage namespaces",
	Long: sym.Perm + ` ns — Manage namespaces and their admin lists

A namespace groups tags under a shared set of admins. System admins may
create any namespace; everyone else may create exactly the namespace
named after their own identifier.`,
}

var nsCreateDesc string
var nsCreateAdmins []string

var nsCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a namespace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.close()
		actor, err := e.actor(cmd)
		if err != nil {
			return err
		}
		ns, err := e.registry.CreateNamespace(cmd.Context(), actor, args[0], nsCreateDesc, nsCreateAdmins)
		if err != nil {
			return err
		}
		fmt.Printf("%s created namespace %s (admins: %s)\n", sym.Perm, ns.Name, strings.Join(ns.Admins, ", "))
		return nil
	},
}

var nsShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show a namespace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.close()
		ns, err := e.registry.GetNamespace(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return json.NewEncoder(os.Stdout).Encode(ns)
		}
		fmt.Printf("%s %s\n", sym.Perm, ns.Name)
		if ns.Description != "" {
			fmt.Printf("  %s\n", ns.Description)
		}
		fmt.Printf("  admins: %s\n", strings.Join(ns.Admins, ", "))
		return nil
	},
}

var nsDescCmd = &cobra.Command{
	Use:   "desc NAME DESCRIPTION",
	Short: "Update a namespace description",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.close()
		actor, err := e.actor(cmd)
		if err != nil {
			return err
		}
		return e.registry.UpdateNamespaceDescription(cmd.Context(), actor, args[0], args[1])
	},
}

var nsAdminsCmd = &cobra.Command{
	Use:   "admins add|remove NAME USER...",
	Short: "Grant or revoke namespace admin",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.close()
		actor, err := e.actor(cmd)
		if err != nil {
			return err
		}
		name, ids := args[1], args[2:]
		switch args[0] {
		case "add":
			return e.registry.AddNamespaceAdmins(cmd.Context(), actor, name, ids)
		case "remove":
			return e.registry.RemoveNamespaceAdmins(cmd.Context(), actor, name, ids)
		}
		return fmt.Errorf("expected 'add' or 'remove', got %q", args[0])
	},
}

func init() {
	nsCreateCmd.Flags().StringVar(&nsCreateDesc, "desc", "", "Namespace description")
	nsCreateCmd.Flags().StringArrayVar(&nsCreateAdmins, "admin", nil, "Initial admin (repeatable; defaults to the creator)")
	NsCmd.AddCommand(nsCreateCmd)
	NsCmd.AddCommand(nsShowCmd)
	NsCmd.AddCommand(nsDescCmd)
	NsCmd.AddCommand(nsAdminsCmd)
}
