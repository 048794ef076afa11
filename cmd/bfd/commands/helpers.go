// Package commands implements the bfd CLI verbs.
package commands

import (
	"database/sql"
	"fmt"
	"os"
	"os/user"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openbfd/bfd/am"
	"github.com/openbfd/bfd/db"
	"github.com/openbfd/bfd/tags"
	"github.com/openbfd/bfd/tags/query"
	"github.com/openbfd/bfd/tags/storage"
	"github.com/openbfd/bfd/tags/types"
)

// env is the environment, wrapping everything a command needs: config,
// database handle, registry, store and engine.
type env struct {
	cfg      *am.Config
	database *sql.DB
	registry *storage.RegistryStore
	store    *storage.Store
	engine   *query.Engine
}

func (e *env) close() {
	e.database.Close()
}

// openEnv loads configuration, opens and migrates the database, and
// wires the store stack.
func openEnv() (*env, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	database, err := db.Open(cfg.Database.Path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Migrate(database, nil); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	registry := storage.NewRegistryStore(database)
	store := storage.NewStore(database, registry, cfg.Store)
	return &env{
		cfg:      cfg,
		database: database,
		registry: registry,
		store:    store,
		engine:   query.NewEngine(store, registry),
	}, nil
}

// actor resolves the acting identity: --actor flag, then BFD_ACTOR, then
// the OS user. System admin status comes from configuration.
func (e *env) actor(cmd *cobra.Command) (tags.Actor, error) {
	id, _ := cmd.Flags().GetString("actor")
	if id == "" {
		id = os.Getenv("BFD_ACTOR")
	}
	if id == "" {
		if u, err := user.Current(); err == nil {
			id = u.Username
		}
	}
	if id == "" {
		return tags.Actor{}, fmt.Errorf("no actor identity; pass --actor or set BFD_ACTOR")
	}
	return tags.Actor{ID: id, SystemAdmin: e.cfg.Admin.IsSystemAdmin(id)}, nil
}

func jsonOutput(cmd *cobra.Command) bool {
	j, _ := cmd.Flags().GetBool("json")
	return j
}

// parseValue coerces raw command line text into the tag's declared kind.
func parseValue(kind types.Kind, raw string) (types.Value, error) {
	switch kind {
	case types.KindString:
		return types.String(raw), nil
	case types.KindPointer:
		return types.Pointer(raw), nil
	case types.KindBoolean:
		switch raw {
		case "true":
			return types.Boolean(true), nil
		case "false":
			return types.Boolean(false), nil
		}
		return types.Value{}, fmt.Errorf("boolean values are 'true' or 'false', got %q", raw)
	case types.KindInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return types.Value{}, fmt.Errorf("invalid integer %q", raw)
		}
		return types.Integer(n), nil
	case types.KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return types.Value{}, fmt.Errorf("invalid float %q", raw)
		}
		return types.Float(f), nil
	case types.KindDatetime:
		return types.ParseDatetime(raw)
	case types.KindDuration:
		return types.ParseDuration(raw)
	case types.KindBinary:
		// mime:type/subtype alone records typed presence; payloads arrive
		// through the API surface, not the CLI
		return types.ParseMime(raw)
	}
	return types.Value{}, fmt.Errorf("unknown tag type %q", kind)
}
