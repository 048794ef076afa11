package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/openbfd/bfd/errors"
	"github.com/openbfd/bfd/sym"
	"github.com/openbfd/bfd/tags"
	"github.com/openbfd/bfd/tags/bfql"
	"github.com/openbfd/bfd/tags/types"
)

var (
	querySetFlags []string
	queryRmFlags  []string
)

// QueryCmd represents the query command
var QueryCmd = &cobra.Command{
	Use:   "query BFQL",
	Short: sym.Query + " Run a BFQL query",
	Long: sym.Query + ` query — Select, update or delete tag values in bulk

Without flags, prints every object matching the predicate together with
the current values of the tags the query references. With --set or --rm,
the matched objects are mutated instead: each --set writes one tagpath
assignment, each --rm deletes one tagpath. Mutations check write
permission on every touched tag before anything is applied.

Examples:
  bfd query 'library/summary matches "whales"'
  bfd query 'book/pages > 100 and book/published < 2000-01-01'
  bfd query 'has library/title and missing library/reviewed' --set library/reviewed=false
  bfd query 'library/title matches "Moby"' --rm library/draft`,
	Args: cobra.ExactArgs(1),
	RunE: runQueryCommand,
}

func init() {
	QueryCmd.Flags().StringArrayVar(&querySetFlags, "set", nil, "Assignment tagpath=value to apply to matched objects (repeatable)")
	QueryCmd.Flags().StringArrayVar(&queryRmFlags, "rm", nil, "Tagpath to delete from matched objects (repeatable)")
}

func runQueryCommand(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	actor, err := e.actor(cmd)
	if err != nil {
		return err
	}

	node, err := e.engine.Parse(args[0])
	if err != nil {
		var pe *bfql.ParseError
		if errors.As(err, &pe) {
			return fmt.Errorf("%s", pe.FormatError(bfql.ErrorContextTerminal))
		}
		return err
	}

	ctx := cmd.Context()
	switch {
	case len(querySetFlags) > 0:
		if len(queryRmFlags) > 0 {
			return fmt.Errorf("--set and --rm cannot be combined in one query")
		}
		assignments, err := e.parseAssignments(ctx, querySetFlags)
		if err != nil {
			return err
		}
		outcomes, err := e.engine.Update(ctx, node, actor, assignments)
		if err != nil {
			return err
		}
		return printOutcomes(cmd, "updated", outcomes)
	case len(queryRmFlags) > 0:
		outcomes, err := e.engine.Delete(ctx, node, actor, queryRmFlags)
		if err != nil {
			return err
		}
		return printOutcomes(cmd, "deleted", outcomes)
	}

	it, err := e.engine.Select(ctx, node, actor)
	if err != nil {
		return err
	}
	count := 0
	enc := json.NewEncoder(os.Stdout)
	for it.Next() {
		res := it.Result()
		count++
		if jsonOutput(cmd) {
			if err := enc.Encode(res); err != nil {
				return err
			}
			continue
		}
		fmt.Printf("%s %s\n", sym.Query, pterm.Bold.Sprint(res.ObjectID))
		paths := make([]string, 0, len(res.Values))
		for p := range res.Values {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			fmt.Printf("  %s = %s\n", p, res.Values[p].Render())
		}
	}
	if err := it.Err(); err != nil {
		return err
	}
	if !jsonOutput(cmd) {
		fmt.Printf("%d object(s) matched\n", count)
	}
	return nil
}

// parseAssignments turns repeated tagpath=value flags into typed values
// using each tag's declared kind.
func (e *env) parseAssignments(ctx context.Context, raw []string) (map[string]types.Value, error) {
	assignments := make(map[string]types.Value, len(raw))
	for _, item := range raw {
		pathText, valueText, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("assignment %q is not of the form tagpath=value", item)
		}
		path, err := tags.ParsePath(pathText)
		if err != nil {
			return nil, err
		}
		tag, err := e.registry.GetTag(ctx, path)
		if err != nil {
			return nil, err
		}
		value, err := parseValue(tag.Type, valueText)
		if err != nil {
			return nil, err
		}
		assignments[pathText] = value
	}
	return assignments, nil
}

func printOutcomes(cmd *cobra.Command, verb string, outcomes []tags.Outcome) error {
	if jsonOutput(cmd) {
		enc := json.NewEncoder(os.Stdout)
		for _, out := range outcomes {
			row := map[string]interface{}{"object_id": out.ObjectID, "ok": !out.Failed()}
			if out.Failed() {
				row["error"] = out.Err.Error()
			}
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		return nil
	}
	failed := 0
	for _, out := range outcomes {
		if out.Failed() {
			failed++
			fmt.Printf("  %s %s: %v\n", pterm.Red("✗"), out.ObjectID, out.Err)
		} else {
			fmt.Printf("  %s %s\n", pterm.Green("✓"), out.ObjectID)
		}
	}
	fmt.Printf("%d object(s) %s, %d failed\n", len(outcomes)-failed, verb, failed)
	return nil
}
