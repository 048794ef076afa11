package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/openbfd/bfd/sym"
	"github.com/openbfd/bfd/tags"
)

// GetCmd represents the get command
var GetCmd = &cobra.Command{
	Use:   "get OBJECT TAGPATH",
	Short: sym.Tag + " Read one tag value",
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
		path, err := tags.ParsePath(args[1])
		if err != nil {
			return err
		}
		tv, err := e.engine.Get(cmd.Context(), actor, args[0], path)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return json.NewEncoder(os.Stdout).Encode(tv)
		}
		fmt.Printf("%s\n", tv.Value.Render())
		return nil
	},
}

// SetCmd represents the set command
var SetCmd = &cobra.Command{
	Use:   "set OBJECT TAGPATH VALUE",
	Short: sym.Tag + " Write one tag value",
	Long: sym.Tag + ` set — Write one tag value

The value is coerced to the tag's declared type. Strings are taken
verbatim; datetimes follow YYYY-MM-DD[THH:MM:SS[+HH:MM]]; durations are
<int>d or <int>s.

Examples:
  bfd set o1 library/title "Moby Dick"
  bfd set o1 library/pages 635
  bfd set o1 library/published 1851-10-18`,
	Args: cobra.ExactArgs(3),
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
		path, err := tags.ParsePath(args[1])
		if err != nil {
			return err
		}
		tag, err := e.registry.GetTag(cmd.Context(), path)
		if err != nil {
			return err
		}
		value, err := parseValue(tag.Type, args[2])
		if err != nil {
			return err
		}
		event, err := e.engine.Set(cmd.Context(), actor, args[0], path, value)
		if err != nil {
			return err
		}
		fmt.Printf("%s set %s on %s (event %s)\n", sym.Event, path, args[0], event.ID)
		return nil
	},
}

// RmCmd represents the rm command
var RmCmd = &cobra.Command{
	Use:   "rm OBJECT TAGPATH",
	Short: sym.Tag + " Delete one tag value",
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
		path, err := tags.ParsePath(args[1])
		if err != nil {
			return err
		}
		event, err := e.engine.Remove(cmd.Context(), actor, args[0], path)
		if err != nil {
			return err
		}
		fmt.Printf("%s removed %s from %s (event %s)\n", sym.Event, path, args[0], event.ID)
		return nil
	},
}

// LsCmd represents the ls command
var LsCmd = &cobra.Command{
	Use:   "ls OBJECT [PATTERN]",
	Short: sym.Tag + " List an object's tags",
	Long: sym.Tag + ` ls — List the tagpaths holding a value on an object

Tags you may not read are omitted. An optional glob pattern filters by
full path, e.g. 'library/*'.`,
	Args: cobra.RangeArgs(1, 2),
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
		pattern := ""
		if len(args) == 2 {
			pattern = args[1]
		}
		paths, err := e.engine.ListTags(cmd.Context(), actor, args[0], pattern)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return json.NewEncoder(os.Stdout).Encode(paths)
		}
		for _, p := range paths {
			fmt.Println(p.String())
		}
		return nil
	},
}

// HistoryCmd represents the history command
var HistoryCmd = &cobra.Command{
	Use:   "history OBJECT TAGPATH",
	Short: sym.Event + " Show the event history of one tag value",
	Long: sym.Event + ` history — Replay the append-only event log for one (object, tag) pair

Events print oldest first. Folding them reproduces the current value;
a trailing delete means the value is currently absent.`,
	Args: cobra.ExactArgs(2),
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
		path, err := tags.ParsePath(args[1])
		if err != nil {
			return err
		}
		it, err := e.engine.History(cmd.Context(), actor, args[0], path)
		if err != nil {
			return err
		}
		defer it.Close()

		enc := json.NewEncoder(os.Stdout)
		for it.Next() {
			ev := it.Event()
			if jsonOutput(cmd) {
				if err := enc.Encode(ev); err != nil {
					return err
				}
				continue
			}
			when := ev.CreatedAt.Format("2006-01-02 15:04:05")
			if ev.Op == tags.OpSet {
				fmt.Printf("%s %s %s %s = %s (by %s)\n",
					sym.Event, when, pterm.Green("set"), path, ev.Value.Render(), ev.Actor)
			} else {
				fmt.Printf("%s %s %s %s (by %s)\n",
					sym.Event, when, pterm.Red("delete"), path, ev.Actor)
			}
		}
		return it.Err()
	},
}
