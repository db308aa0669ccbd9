package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"uplens/internal/engine"
	"uplens/internal/metrics"
	"uplens/internal/pairstore"
	"uplens/internal/report"
	"uplens/internal/rowsource"
	"uplens/internal/snapstore"
)

func main() {
	var (
		source    string
		input     string
		dbPath    string
		snapID    int64
		bootstrap string
		topic     string

		product string
		compare bool
		splitAt string

		jsonOut string
		listen  string

		pairsBackend string
		pairsDir     string
		runSeq       int64
	)
	flag.StringVar(&source, "source", "csv", "row source: csv|sqlite|kafka")
	flag.StringVar(&input, "input", "", "order export CSV path (source=csv)")
	flag.StringVar(&dbPath, "db", "uplens.db", "sqlite snapshot database (source=sqlite)")
	flag.Int64Var(&snapID, "snapshot", 0, "snapshot id to analyze, 0 = latest (source=sqlite)")
	flag.StringVar(&bootstrap, "bootstrap", "localhost:19092", "kafka bootstrap servers (source=kafka)")
	flag.StringVar(&topic, "topic", "orders.export", "kafka export topic (source=kafka)")
	flag.StringVar(&product, "product", "", "product code for the co-purchase section")
	flag.BoolVar(&compare, "compare", false, "add the before/after period comparison")
	flag.StringVar(&splitAt, "split", "", "last day of the prior period, YYYY-MM-DD (default: midpoint)")
	flag.StringVar(&jsonOut, "json", "", "write the report as JSON to this path ('-' for stdout)")
	flag.StringVar(&listen, "listen", "", "serve /metrics and /healthz on this address and stay up")
	flag.StringVar(&pairsBackend, "pairs-backend", "", "persist pair counts: memory|pebble|badger")
	flag.StringVar(&pairsDir, "pairs-dir", "pairs-data", "pair store directory (pebble/badger)")
	flag.Int64Var(&runSeq, "run-seq", 0, "run sequence for pair persistence, 0 = current unix time")
	flag.Parse()

	cfg := engine.DefaultConfig()
	if splitAt != "" {
		t, err := time.Parse("2006-01-02", splitAt)
		if err != nil {
			log.Fatalf("parse -split: %v", err)
		}
		cfg.SplitAt = t
	}

	var reg *metrics.Registry
	if listen != "" {
		reg = metrics.NewRegistry()
		mux := http.NewServeMux()
		mux.Handle("/metrics", reg.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		go func() {
			log.Printf("metrics on %s", listen)
			if err := http.ListenAndServe(listen, mux); err != nil {
				log.Fatalf("metrics server: %v", err)
			}
		}()
	}

	ctx := context.Background()
	rows, cleanup, err := loadRows(ctx, source, input, dbPath, snapID, bootstrap, topic, cfg)
	if err != nil {
		log.Fatalf("load rows: %v", err)
	}
	defer cleanup()
	log.Printf("loaded %d rows from %s", len(rows), source)

	opts := engine.RunOptions{
		RelatedProduct: product,
		ComparePeriods: compare,
	}
	if pairsBackend != "" {
		st, closeStore, err := openPairStore(pairsBackend, pairsDir)
		if err != nil {
			log.Fatalf("open pair store: %v", err)
		}
		defer closeStore()
		opts.PairStore = st
		opts.RunSeq = runSeq
		if opts.RunSeq == 0 {
			opts.RunSeq = time.Now().UTC().Unix()
		}
	}

	eng := engine.New(cfg, reg)
	rep, err := eng.Run(rows, opts)
	if err != nil {
		log.Fatalf("analyze: %v", err)
	}

	printReport(rep)
	if jsonOut != "" {
		if err := writeJSON(jsonOut, rep); err != nil {
			log.Fatalf("write json: %v", err)
		}
	}

	if listen != "" {
		select {} // keep serving metrics
	}
}

func loadRows(ctx context.Context, source, input, dbPath string, snapID int64, bootstrap, topic string, cfg engine.Config) ([]rowsource.Row, func(), error) {
	noop := func() {}
	switch source {
	case "csv":
		if input == "" {
			return nil, noop, fmt.Errorf("-input is required with -source=csv")
		}
		f, err := os.Open(input)
		if err != nil {
			return nil, noop, err
		}
		defer f.Close()
		src := rowsource.NewCSVSource(f)
		rows, err := src.ReadAll(ctx)
		if err != nil {
			return nil, noop, err
		}
		if src.SkippedRows > 0 {
			log.Printf("skipped %d undecodable csv records", src.SkippedRows)
		}
		return rows, noop, nil

	case "sqlite":
		st, err := snapstore.Open(dbPath)
		if err != nil {
			return nil, noop, err
		}
		if snapID == 0 {
			id, date, ok, err := st.LatestSnapshot()
			if err != nil {
				st.Close()
				return nil, noop, err
			}
			if !ok {
				st.Close()
				return nil, noop, fmt.Errorf("no snapshots in %s", dbPath)
			}
			log.Printf("using latest snapshot %d (%s)", id, date)
			snapID = id
		}
		rows, err := st.LineSource(snapID, cfg.Schema).ReadAll(ctx)
		if err != nil {
			st.Close()
			return nil, noop, err
		}
		return rows, func() { st.Close() }, nil

	case "kafka":
		src := rowsource.NewKafkaSource(strings.Split(bootstrap, ","), topic)
		rows, err := src.ReadAll(ctx)
		return rows, noop, err

	default:
		return nil, noop, fmt.Errorf("unknown source %q", source)
	}
}

func openPairStore(backend, dir string) (pairstore.Store, func(), error) {
	switch backend {
	case "memory":
		return pairstore.NewInMemoryStore(), func() {}, nil
	case "pebble":
		st, err := pairstore.NewPebbleStore(dir)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	case "badger":
		st, err := pairstore.NewBadgerStore(dir)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func printReport(rep *report.Report) {
	if rep.PeriodStart != "" {
		fmt.Printf("Period: %s .. %s (%d days)\n", rep.PeriodStart, rep.PeriodEnd, rep.PeriodDays)
	}
	d := rep.Diagnostics
	fmt.Printf("Rows: %d read, %d dropped (amount=%d date=%d no-order=%d)\n",
		d.RowsRead, d.Dropped(), d.DroppedAmount, d.DroppedDate, d.DroppedNoOrder)

	for _, sec := range rep.Sections {
		fmt.Printf("\n== %s ==\n", sec.Title)
		for _, m := range sec.Metrics {
			line := fmt.Sprintf("  %-34s %s", m.Label, m.Formatted)
			if m.Verdict != "" && m.Verdict != "N/A" {
				line += "  [" + string(m.Verdict) + "]"
			}
			fmt.Println(line)
		}
		for _, t := range sec.Tables {
			if t.Title != sec.Title {
				fmt.Printf("  -- %s --\n", t.Title)
			}
			fmt.Printf("  %s\n", strings.Join(t.Columns, " | "))
			for _, r := range t.Rows {
				fmt.Printf("  %s\n", strings.Join(r, " | "))
			}
		}
	}
}

func writeJSON(path string, rep *report.Report) error {
	var out *os.File
	if path == "-" {
		out = os.Stdout
	} else {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
