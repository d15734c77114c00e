package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/strand-ui/strand/pkg/component"
	"github.com/strand-ui/strand/pkg/reactive"
	"github.com/strand-ui/strand/pkg/telemetry"
	"github.com/strand-ui/strand/pkg/vtree"
)

// benchCounters tallies scheduler activity during a run.
type benchCounters struct {
	flushes     atomic.Uint64
	watcherRuns atomic.Uint64
	cycles      atomic.Uint64
}

func (c *benchCounters) FlushStart(pending int)                {}
func (c *benchCounters) FlushEnd(ran int, took time.Duration)  { c.flushes.Add(1) }
func (c *benchCounters) WatcherRan(id uint64)                  { c.watcherRuns.Add(1) }
func (c *benchCounters) CycleDetected(id uint64)               { c.cycles.Add(1) }
func (c *benchCounters) OpApplied(op string)                   {}

type benchReport struct {
	Rows        int           `json:"rows"`
	Updates     int           `json:"updates"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	Flushes     uint64        `json:"flushes"`
	WatcherRuns uint64        `json:"watcher_runs"`
	Cycles      uint64        `json:"cycles"`
	Creates     int           `json:"node_creates"`
	Inserts     int           `json:"node_inserts"`
	Removes     int           `json:"node_removes"`
	TextWrites  int           `json:"text_writes"`
	AttrWrites  int           `json:"attr_writes"`
}

func benchCmd() *cobra.Command {
	var (
		rows    int
		updates int
		jsonOut string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a synthetic render workload",
		Long: `Render a keyed list into the in-memory recorder platform and drive it
through a series of batched updates, reporting flush counts and the
platform mutations the reconciler applied.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(rows, updates, jsonOut)
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 100, "Rows in the rendered list")
	cmd.Flags().IntVar(&updates, "updates", 1000, "Update batches to apply")
	cmd.Flags().StringVar(&jsonOut, "json", "", "Write the report as JSON to this file ('-' for stdout)")

	return cmd
}

func runBench(rows, updates int, jsonOut string) error {
	counters := &benchCounters{}
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(telemetry.WithRegistry(reg))
	sched := reactive.NewScheduler(
		reactive.WithHooks(telemetry.Fanout(metrics, counters)),
	)

	items := make([]any, rows)
	for i := range items {
		items[i] = map[string]any{
			"id":    fmt.Sprintf("row-%d", i),
			"label": fmt.Sprintf("item %d", i),
			"done":  false,
		}
	}
	state := reactive.Observe(map[string]any{
		"rows":     items,
		"selected": "",
	}).(*reactive.Object)

	render := func() *vtree.VNode {
		list := state.Get("rows").(*reactive.List)
		selected := state.Get("selected").(string)
		children := make([]*vtree.VNode, 0, list.Len())
		for i := 0; i < list.Len(); i++ {
			row := list.At(i).(*reactive.Object)
			id := row.Get("id").(string)
			attrs := vtree.Attrs{"class": "row"}
			if id == selected {
				attrs["class"] = "row selected"
			}
			children = append(children,
				vtree.El("li", attrs, vtree.Text(row.Get("label").(string))).WithKey(id))
		}
		return vtree.El("ul", nil, children...)
	}

	rec := vtree.NewRecorder()
	inst := component.Mount(rec.Body(), rec, render,
		component.WithScheduler(sched),
		component.WithPatchHooks(metrics),
	)
	rec.ResetCounts()

	start := time.Now()
	list := state.Peek("rows").(*reactive.List)
	for i := 0; i < updates; i++ {
		switch i % 4 {
		case 0:
			row := list.At(i % rows).(*reactive.Object)
			row.Set("label", fmt.Sprintf("item %d rev %d", i%rows, i))
		case 1:
			state.Set("selected", fmt.Sprintf("row-%d", i%rows))
		case 2:
			row := list.At(i % rows).(*reactive.Object)
			row.Set("done", i%8 == 2)
		case 3:
			list.Reverse()
		}
		<-sched.NextTick(nil)
	}
	elapsed := time.Since(start)
	inst.Teardown()

	counts := rec.Counts()
	report := benchReport{
		Rows:        rows,
		Updates:     updates,
		Elapsed:     elapsed,
		Flushes:     counters.flushes.Load(),
		WatcherRuns: counters.watcherRuns.Load(),
		Cycles:      counters.cycles.Load(),
		Creates:     counts.Creates + counts.TextCreates,
		Inserts:     counts.Inserts,
		Removes:     counts.Removes,
		TextWrites:  counts.TextWrites,
		AttrWrites:  counts.AttrSets + counts.AttrRemoves,
	}

	if jsonOut != "" {
		return writeReport(report, jsonOut)
	}

	printBanner()
	fmt.Println()
	info("rows:          %d", report.Rows)
	info("updates:       %d", report.Updates)
	info("elapsed:       %s", report.Elapsed)
	info("flushes:       %d", report.Flushes)
	info("watcher runs:  %d", report.WatcherRuns)
	info("node creates:  %d", report.Creates)
	info("node inserts:  %d", report.Inserts)
	info("node removes:  %d", report.Removes)
	info("text writes:   %d", report.TextWrites)
	info("attr writes:   %d", report.AttrWrites)
	fmt.Println()
	return nil
}

func writeReport(report benchReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
