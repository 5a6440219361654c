package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/schemalign/schemalign/internal/config"
	"github.com/schemalign/schemalign/internal/inspect"
	"github.com/schemalign/schemalign/internal/logger"
)

var (
	inspectDatabase string
	inspectTable    string
)

var InspectCmd = &cobra.Command{
	Use:   "inspect <config>",
	Short: "Dump a database's canonical schema model as JSON",
	Long: `inspect connects to one configured database, the template by default or
any target via --database, and prints its canonical schema model as
JSON. This is the exact model comparisons run on, useful for checking
what introspection sees before diffing.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runInspect,
}

func init() {
	InspectCmd.Flags().StringVar(&inspectDatabase, "database", "", "Target database name to inspect (default: the template)")
	InspectCmd.Flags().StringVar(&inspectTable, "table", "", "Inspect a single table instead of the configured set")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}

	db := cfg.TemplateDatabase
	if inspectDatabase != "" {
		target, ok := cfg.TargetDatabases[inspectDatabase]
		if !ok {
			return fmt.Errorf("unknown target database %q; configured: %s",
				inspectDatabase, strings.Join(cfg.TargetNames(), ", "))
		}
		db = target
	}
	d, err := db.Dialect()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	conn, err := inspect.Connect(ctx, db, time.Duration(cfg.ConnectTimeout)*time.Second)
	if err != nil {
		return err
	}
	defer conn.Close()

	tables, all := cfg.Tables, cfg.AllTables
	if inspectTable != "" {
		tables, all = []string{inspectTable}, false
	}
	schema, notFound, err := inspect.BuildSchema(ctx, inspect.NewInspector(conn), d, tables, all)
	if err != nil {
		return err
	}
	if len(notFound) > 0 {
		return fmt.Errorf("%w: %s", inspect.ErrTableNotFound, strings.Join(notFound, ", "))
	}
	if logger.IsDebug() {
		log := logger.Get()
		for _, name := range schema.TableOrder {
			t := schema.Tables[name]
			log.Debug("introspected table",
				"table", name,
				"columns", len(t.Columns),
				"indexes", len(t.Indexes),
				"foreign_keys", len(t.ForeignKeys),
			)
		}
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
