package main

import (
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flatbase/flatbase/catalog"
	"github.com/flatbase/flatbase/heap"
)

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <table>",
		Short: "dump a heap-file table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(args[0])
		},
	}
}

func runScan(table string) error {
	start := time.Now()
	cat, err := catalog.ReadFile(table)
	if err != nil {
		return err
	}
	store, err := heap.NewFileStorage(heap.Path(table))
	if err != nil {
		return err
	}
	it, err := heap.Scan(store, cat.Schema)
	if err != nil {
		store.Close()
		return err
	}

	rendered := 0
	out := tablewriter.NewWriter(os.Stdout)
	out.SetHeader(cat.Columns)
	for {
		r, ok, err := it.Next()
		if err != nil {
			it.Close()
			return err
		}
		if !ok {
			break
		}
		record := make([]string, len(r))
		for i, v := range r {
			record[i] = fmt.Sprintf("%v", v)
		}
		out.Append(record)
		rendered++
	}
	if err := it.Close(); err != nil {
		return err
	}
	out.Render()

	log.WithFields(log.Fields{
		"table":    table,
		"rows":     rendered,
		"duration": time.Since(start),
	}).Info("flatbase: scan complete")
	return nil
}
