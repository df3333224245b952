package main

import (
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flatbase/flatbase/engine"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <plan.json>",
		Short: "execute a JSON-encoded plan and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlanFile(args[0])
		},
	}
}

func runPlanFile(path string) error {
	start := time.Now()
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	e := engine.New()
	plan, err := buildPlan(data, e)
	if err != nil {
		return err
	}

	result, err := e.Query(plan)
	if err != nil {
		return err
	}

	out := tablewriter.NewWriter(os.Stdout)
	out.SetHeader(result.Columns)
	for _, r := range result.Rows {
		record := make([]string, len(result.Columns))
		for i, col := range result.Columns {
			record[i] = fmt.Sprintf("%v", r[col])
		}
		out.Append(record)
	}
	out.Render()

	log.WithFields(log.Fields{
		"plan":     path,
		"rows":     len(result.Rows),
		"duration": time.Since(start),
	}).Info("flatbase: run complete")
	return nil
}
