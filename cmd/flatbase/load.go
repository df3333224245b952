package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	log "github.com/sirupsen/logrus"

	"github.com/flatbase/flatbase/coltype"
	"github.com/flatbase/flatbase/csvsource"
	"github.com/flatbase/flatbase/engine"
	"github.com/flatbase/flatbase/row"
)

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <table> <csv-path> <columns> <types>",
		Short: "create a table from a CSV file",
		Long: "load reads csv-path's records (its own header row is skipped; " +
			"columns and types declare the table's catalog directly, " +
			"comma-separated, e.g. \"name,age,city\" \"STRING,INT,STRING\") " +
			"and writes the table's catalog and heap file.",
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(args[0], args[1], args[2], args[3])
		},
	}
}

func runLoad(table, csvPath, columnsArg, typesArg string) error {
	start := time.Now()
	columns := splitCSVList(columnsArg)
	typeNames := splitCSVList(typesArg)
	if len(columns) != len(typeNames) {
		return errColumnsTypesMismatch(len(columns), len(typeNames))
	}
	schema := make([]coltype.CT, len(typeNames))
	for i, name := range typeNames {
		ct, err := coltype.FromName(strings.ToUpper(name))
		if err != nil {
			return err
		}
		schema[i] = ct
	}

	reader, err := csvsource.Open(csvPath)
	if err != nil {
		return err
	}
	defer reader.Close()
	if _, err := reader.Header(); err != nil {
		return err
	}

	var rows []row.Row
	for {
		fields, ok, err := reader.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if len(fields) != len(schema) {
			return errFieldCountMismatch(table, len(fields), len(schema))
		}
		r := make(row.Row, len(fields))
		for i, f := range fields {
			v, err := coltype.Parse(schema[i], f)
			if err != nil {
				return err
			}
			r[i] = v
		}
		rows = append(rows, r)
	}

	e := engine.New()
	if err := e.CreateTable(table, columns, schema, rows); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"table":    table,
		"rows":     len(rows),
		"duration": time.Since(start),
	}).Info("flatbase: load complete")
	return nil
}

func splitCSVList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
