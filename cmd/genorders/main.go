package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"uplens/internal/normalize"
)

// Generates a synthetic order-export CSV in the default mall format, for
// local runs of the analyzer without a real export.

func main() {
	var (
		count      int
		days       int
		outputFile string
		seed       int64
	)
	flag.IntVar(&count, "count", 200, "number of orders to generate")
	flag.IntVar(&days, "days", 60, "spread order dates over this many trailing days")
	flag.StringVar(&outputFile, "output", "orders.csv", "output file")
	flag.Int64Var(&seed, "seed", 0, "rng seed, 0 = time-based")
	flag.Parse()

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if err := generate(count, days, outputFile, rand.New(rand.NewSource(seed))); err != nil {
		log.Fatalf("generation failed: %v", err)
	}
}

type product struct {
	code   string
	name   string
	option string
	price  int64
	upsell bool
}

var catalog = []product{
	{"P001", "프리미엄 세럼", "30ml", 38000, false},
	{"P002", "수분 크림", "50ml", 24000, false},
	{"P003", "클렌징 폼", "", 12000, false},
	{"P004", "토너 패드", "60매", 19000, false},
	{"P005", "미니 세럼", "10ml", 9000, true},
	{"P006", "립밤", "오리지널", 7000, true},
	{"P007", "샘플 키트", "5종", 5000, true},
}

func generate(count, days int, outputFile string, rng *rand.Rand) error {
	file, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	sc := normalize.DefaultSchema()
	w := csv.NewWriter(file)
	header := []string{
		sc.OrderID, sc.OrderDate, sc.OrderTotal, sc.BuyerID, sc.Class,
		sc.ProductCode, sc.ProductName, sc.ProductOption, sc.UnitPrice, sc.Qty,
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	end := time.Now().UTC().Truncate(24 * time.Hour)
	lines := 0
	for i := 0; i < count; i++ {
		orderID := fmt.Sprintf("ORD-%06d", i+1)
		date := end.AddDate(0, 0, -rng.Intn(days)).Format("2006-01-02")
		buyer := fmt.Sprintf("user%03d", rng.Intn(80)+1)
		if rng.Float64() < 0.15 {
			buyer = "" // guest checkout
		}

		n := 1 + rng.Intn(3)
		picks := rng.Perm(len(catalog))[:n]
		var total int64
		type line struct {
			p   product
			qty int64
		}
		var ls []line
		for _, pi := range picks {
			p := catalog[pi]
			qty := int64(1 + rng.Intn(3))
			total += p.price * qty
			ls = append(ls, line{p, qty})
		}

		for _, l := range ls {
			class := sc.GeneralValue
			if l.p.upsell {
				class = sc.UpsellValue
			}
			rec := []string{
				orderID, date, fmt.Sprintf("%d", total), buyer, class,
				l.p.code, l.p.name, l.p.option,
				fmt.Sprintf("%d", l.p.price), fmt.Sprintf("%d", l.qty),
			}
			if err := w.Write(rec); err != nil {
				return fmt.Errorf("write order %s: %w", orderID, err)
			}
			lines++
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	log.Printf("generated %d orders (%d lines) to %s", count, lines, outputFile)
	return nil
}
