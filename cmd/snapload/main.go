package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"uplens/internal/normalize"
	"uplens/internal/rowsource"
	"uplens/internal/snapstore"
)

// Imports an order-export CSV into the snapshot database and optionally
// records which services the shop had active at that snapshot.

func main() {
	var (
		dbPath   string
		input    string
		date     string
		shopID   string
		services string
		usage    bool
	)
	flag.StringVar(&dbPath, "db", "uplens.db", "sqlite snapshot database")
	flag.StringVar(&input, "input", "", "order export CSV to import")
	flag.StringVar(&date, "date", "", "snapshot date YYYY-MM-DD (default: today)")
	flag.StringVar(&shopID, "shop", "", "shop id for service usage rows")
	flag.StringVar(&services, "services", "", "comma-separated active services for -shop")
	flag.BoolVar(&usage, "show-usage", false, "print the service usage pivot and exit")
	flag.Parse()

	st, err := snapstore.Open(dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	if usage {
		printUsage(st)
		return
	}

	if input == "" {
		log.Fatal("-input is required")
	}
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	f, err := os.Open(input)
	if err != nil {
		log.Fatalf("open input: %v", err)
	}
	defer f.Close()

	rows, err := rowsource.NewCSVSource(f).ReadAll(context.Background())
	if err != nil {
		log.Fatalf("read csv: %v", err)
	}

	snapID, err := st.AddSnapshot(date)
	if err != nil {
		log.Fatalf("add snapshot: %v", err)
	}
	if err := st.ImportLines(snapID, rows, normalize.DefaultSchema()); err != nil {
		log.Fatalf("import lines: %v", err)
	}
	log.Printf("snapshot %d (%s): imported %d lines", snapID, date, len(rows))

	if shopID != "" && services != "" {
		for _, sv := range strings.Split(services, ",") {
			sv = strings.TrimSpace(sv)
			if sv == "" {
				continue
			}
			if err := st.RecordUsage(snapID, sv, shopID); err != nil {
				log.Fatalf("record usage: %v", err)
			}
		}
		log.Printf("recorded service usage for shop %s", shopID)
	}
}

func printUsage(st *snapstore.Store) {
	cells, err := st.ServiceUsage(context.Background())
	if err != nil {
		log.Fatalf("service usage: %v", err)
	}
	if len(cells) == 0 {
		fmt.Println("no usage recorded")
		return
	}
	fmt.Println("date | service | shops")
	for _, c := range cells {
		fmt.Printf("%s | %s | %d\n", c.Date, c.Service, c.Shops)
	}
}
