// Command dashtemplate runs a drill-through dashboard in the terminal: it
// loads a tabular dataset, projects it over the configured hierarchy, and
// applies expand and collapse commands read from stdin.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/AaronQLF/dashTemplate/cache"
	"github.com/AaronQLF/dashTemplate/config"
	"github.com/AaronQLF/dashTemplate/dataset"
	"github.com/AaronQLF/dashTemplate/matrix"
	"github.com/AaronQLF/dashTemplate/metric"
	"github.com/AaronQLF/dashTemplate/ui"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "config.json", "path to the dashboard config")
	dataPath := flag.String("data", "data.json", "path to the dataset document")
	flag.Parse()

	if err := run(*configPath, *dataPath); err != nil {
		slog.Error("dashtemplate failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, dataPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := cfg.BuildLogger(os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table, err := loadTable(ctx, cfg, dataPath)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded", "path", dataPath, "rows", table.Len())

	metrics := metric.NewMetricsRegistry()

	controller, err := matrix.NewController(table, cfg.Matrix.GroupBy, cfg.Matrix.Metrics,
		matrix.WithControllerLogger(logger),
		matrix.WithControllerMetrics(metrics),
	)
	if err != nil {
		return err
	}

	binder := ui.NewBinder(ui.NewTextRenderer(os.Stdout),
		ui.WithBinderLogger(logger),
		ui.WithBinderMetrics(metrics),
	)
	dispatcher := ui.NewDispatcher(binder,
		ui.WithDispatcherLogger(logger),
		ui.WithDispatcherMetrics(metrics),
	)
	if err := dispatcher.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := dispatcher.Stop(shutdownTimeout); err != nil {
			logger.Warn("dispatcher shutdown incomplete", "error", err)
		}
	}()

	if err := binder.Bind(controller); err != nil {
		return err
	}

	return repl(ctx, controller, dispatcher)
}

// loadTable reads the dataset document, routed through the configured
// "load_data" cache when one is present so repeated starts against a disk
// cache skip the parse.
func loadTable(ctx context.Context, cfg config.Config, path string) (dataset.Table, error) {
	load := func(ctx context.Context, args cache.Args) (dataset.Table, error) {
		return readTable(args.Positional[0].(string))
	}

	cacheCfg, cached := cfg.Caches["load_data"]
	if !cached {
		return load(ctx, cache.NewArgs(path))
	}
	wrapped, err := cache.WrapFromConfig("load_data", load, cacheCfg)
	if err != nil {
		return dataset.Table{}, err
	}
	return wrapped.Call(ctx, cache.NewArgs(path))
}

// tableDocument is the dataset file format: an explicit schema plus rows.
type tableDocument struct {
	Columns []string      `json:"columns"`
	Rows    []dataset.Row `json:"rows"`
}

func readTable(path string) (dataset.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dataset.Table{}, err
	}
	var doc tableDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return dataset.Table{}, err
	}
	return dataset.NewTable(doc.Columns, doc.Rows)
}

func repl(ctx context.Context, controller *matrix.Controller, dispatcher *ui.Dispatcher) error {
	fmt.Println()
	fmt.Println("commands: toggle <row> | all | none | stats | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "toggle":
			if len(fields) != 2 {
				fmt.Println("usage: toggle <row>")
				continue
			}
			row, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("usage: toggle <row>")
				continue
			}
			submit(dispatcher, ui.Event{ElementID: controller.ID(), Name: ui.EventToggle, RowIndex: row})
		case "all":
			submit(dispatcher, ui.Event{ElementID: controller.ID(), Name: ui.EventExpandAll})
		case "none":
			submit(dispatcher, ui.Event{ElementID: controller.ID(), Name: ui.EventCollapseAll})
		case "stats":
			printStats()
		case "quit", "exit":
			return nil
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

func submit(dispatcher *ui.Dispatcher, ev ui.Event) {
	if err := dispatcher.Submit(ev); err != nil {
		fmt.Printf("event rejected: %v\n", err)
	}
}

func printStats() {
	summary := cache.Default().StatsAll()
	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		fmt.Printf("stats unavailable: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
