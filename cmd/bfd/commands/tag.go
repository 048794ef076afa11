package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openbfd/bfd/sym"
	"github.com/openbfd/bfd/tags"
	"github.com/openbfd/bfd/tags/types"
)

// TagCmd represents the tag command
var TagCmd = &cobra.Command{
	Use:   "tag",
	Short: sym.Tag + " Manage tag declarations",
	Long: sym.Tag + ` tag — Declare tags and manage their whitelists

A tag's type is fixed at creation: one of string, boolean, integer,
float, datetime, duration, pointer, binary. Private tags restrict writes
to the users whitelist and reads to the readers whitelist; namespace
admins always have access.`,
}

var tagCreateDesc string
var tagCreatePrivate bool

var tagCreateCmd = &cobra.Command{
	Use:   "create TAGPATH TYPE",
	Short: "Declare a tag",
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
		path, err := tags.ParsePath(args[0])
		if err != nil {
			return err
		}
		tag, err := e.registry.CreateTag(cmd.Context(), actor, path, tagCreateDesc, types.Kind(args[1]), tagCreatePrivate)
		if err != nil {
			return err
		}
		fmt.Printf("%s created tag %s (%s)\n", sym.Tag, tag.Path(), tag.Type)
		return nil
	},
}

var tagShowCmd = &cobra.Command{
	Use:   "show TAGPATH",
	Short: "Show a tag declaration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.close()
		path, err := tags.ParsePath(args[0])
		if err != nil {
			return err
		}
		tag, err := e.registry.GetTag(cmd.Context(), path)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return json.NewEncoder(os.Stdout).Encode(tag)
		}
		fmt.Printf("%s %s: %s", sym.Tag, tag.Path(), tag.Type)
		if tag.Private {
			fmt.Printf(" (private)")
		}
		fmt.Println()
		if tag.Description != "" {
			fmt.Printf("  %s\n", tag.Description)
		}
		if len(tag.Users) > 0 {
			fmt.Printf("  users:   %s\n", strings.Join(tag.Users, ", "))
		}
		if len(tag.Readers) > 0 {
			fmt.Printf("  readers: %s\n", strings.Join(tag.Readers, ", "))
		}
		return nil
	},
}

var tagPrivateCmd = &cobra.Command{
	Use:   "private TAGPATH true|false",
	Short: "Set a tag's private flag",
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
		path, err := tags.ParsePath(args[0])
		if err != nil {
			return err
		}
		switch args[1] {
		case "true":
			return e.registry.SetTagPrivate(cmd.Context(), actor, path, true)
		case "false":
			return e.registry.SetTagPrivate(cmd.Context(), actor, path, false)
		}
		return fmt.Errorf("expected 'true' or 'false', got %q", args[1])
	},
}

var tagUsersCmd = &cobra.Command{
	Use:   "users add|remove TAGPATH USER...",
	Short: "Manage a tag's write whitelist",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runWhitelistCommand("users"),
}

var tagReadersCmd = &cobra.Command{
	Use:   "readers add|remove TAGPATH USER...",
	Short: "Manage a tag's read whitelist",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runWhitelistCommand("readers"),
}

func runWhitelistCommand(list string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.close()
		actor, err := e.actor(cmd)
		if err != nil {
			return err
		}
		path, err := tags.ParsePath(args[1])
		if err != nil {
			return err
		}
		ids := args[2:]
		switch args[0] {
		case "add":
			if list == "users" {
				return e.registry.AddTagUsers(cmd.Context(), actor, path, ids)
			}
			return e.registry.AddTagReaders(cmd.Context(), actor, path, ids)
		case "remove":
			if list == "users" {
				return e.registry.RemoveTagUsers(cmd.Context(), actor, path, ids)
			}
			return e.registry.RemoveTagReaders(cmd.Context(), actor, path, ids)
		}
		return fmt.Errorf("expected 'add' or 'remove', got %q", args[0])
	}
}

func init() {
	tagCreateCmd.Flags().StringVar(&tagCreateDesc, "desc", "", "Tag description")
	tagCreateCmd.Flags().BoolVar(&tagCreatePrivate, "private", false, "Restrict access to the whitelists")
	TagCmd.AddCommand(tagCreateCmd)
	TagCmd.AddCommand(tagShowCmd)
	TagCmd.AddCommand(tagPrivateCmd)
	TagCmd.AddCommand(tagUsersCmd)
	TagCmd.AddCommand(tagReadersCmd)
}
