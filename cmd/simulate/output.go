package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/andresuchdata/invsim/internal/domain"
)

const (
	formatTable = "table"
	formatCSV   = "csv"
	formatJSON  = "json"
)

var recordHeader = []string{"day", "begin_of_day", "end_of_day", "missed", "demand", "restock"}

func writeTable(w io.Writer, format string, table *domain.SimulationTable, withSummary bool) error {
	switch format {
	case formatJSON:
		return writeJSON(w, table)
	case formatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(recordHeader); err != nil {
			return err
		}
		for _, rec := range table.Records {
			row := []string{
				strconv.Itoa(rec.Day),
				strconv.Itoa(rec.BeginOfDay),
				strconv.Itoa(rec.EndOfDay),
				strconv.Itoa(rec.Missed),
				strconv.Itoa(rec.Demand),
				strconv.Itoa(rec.Restock),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case formatTable, "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "Day\tBegOfDay\tEndOfDay\tMissed\tDemand\tRestock\t")
		for _, rec := range table.Records {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t\n",
				rec.Day, rec.BeginOfDay, rec.EndOfDay, rec.Missed, rec.Demand, rec.Restock)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if withSummary {
			s := table.Summary
			fmt.Fprintf(w, "\nTotal demand: %d, sold: %d, missed: %d, fill rate: %.2f%%\n",
				s.TotalDemand, s.UnitsSold, s.TotalMissed, s.FillRate*100)
			fmt.Fprintf(w, "Stockout days: %d, restocks: %d (%d units), final inventory: %d\n",
				s.StockoutDays, s.RestockEvents, s.UnitsRestocked, s.FinalInventory)
		}
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

func writeSweep(w io.Writer, format string, sweep *domain.SweepResult) error {
	switch format {
	case formatJSON:
		return writeJSON(w, sweep)
	case formatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"seed", "fill_rate", "total_missed", "stockout_days", "restock_events", "final_inventory"}); err != nil {
			return err
		}
		for _, run := range sweep.Runs {
			s := run.Summary
			row := []string{
				strconv.FormatInt(run.Seed, 10),
				strconv.FormatFloat(s.FillRate, 'f', 4, 64),
				strconv.Itoa(s.TotalMissed),
				strconv.Itoa(s.StockoutDays),
				strconv.Itoa(s.RestockEvents),
				strconv.Itoa(s.FinalInventory),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case formatTable, "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "Seed\tFillRate\tMissed\tStockoutDays\tRestocks\tFinal\t")
		for _, run := range sweep.Runs {
			s := run.Summary
			fmt.Fprintf(tw, "%d\t%.4f\t%d\t%d\t%d\t%d\t\n",
				run.Seed, s.FillRate, s.TotalMissed, s.StockoutDays, s.RestockEvents, s.FinalInventory)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(w, "\nFill rate mean %.4f (min %.4f, max %.4f) over %d seeds\n",
			sweep.FillRate.Mean, sweep.FillRate.Min, sweep.FillRate.Max, len(sweep.Runs))
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
