// Package main is a read-side query tool for the analytical store. It
// executes SQL against a Pinot broker and prints or saves the result
// table. It shares no state with the streaming pipeline.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"time"

	"txstream/internal/config"
	"txstream/internal/pinot"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	broker := flag.String("broker", cfg.Pinot.BrokerURL, "Pinot broker base URL")
	sql := flag.String("sql", "", "SQL to execute (overrides -table)")
	table := flag.String("table", "", "convenience: SELECT * FROM <table> LIMIT <limit>")
	limit := flag.Int("limit", 10, "row limit for the -table query")
	timeout := flag.Duration("timeout", cfg.Pinot.Timeout, "query timeout")
	out := flag.String("out", "", "write results to a CSV file instead of stdout")
	flag.Parse()

	query := *sql
	if query == "" {
		if *table != "" {
			query = fmt.Sprintf("SELECT * FROM %s LIMIT %d", *table, *limit)
		} else {
			query = "SELECT 1"
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := pinot.NewClient(*broker, *timeout)

	start := time.Now()
	result, err := client.Query(ctx, query)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query failed:", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "query done in %.2fs, %d row(s)\n", time.Since(start).Seconds(), len(result.Rows))

	if *out != "" {
		if err := writeCSV(*out, result); err != nil {
			fmt.Fprintln(os.Stderr, "failed to save results:", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "saved to", *out)
		return
	}

	printTable(result)
}

func printTable(result *pinot.ResultTable) {
	for i, col := range result.Columns {
		if i > 0 {
			fmt.Print("\t")
		}
		fmt.Print(col)
	}
	fmt.Println()

	for _, row := range result.Rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Print("\t")
			}
			fmt.Print(formatCell(cell))
		}
		fmt.Println()
	}
}

func writeCSV(path string, result *pinot.ResultTable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(result.Columns); err != nil {
		return err
	}
	record := make([]string, 0, len(result.Columns))
	for _, row := range result.Rows {
		record = record[:0]
		for _, cell := range row {
			record = append(record, formatCell(cell))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatCell(cell any) string {
	switch v := cell.(type) {
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
