package bucket

import (
	"sort"

	"uplens/internal/normalize"
)

// ClassFilter selects which line classes feed the product summary.
type ClassFilter int

const (
	AllLines ClassFilter = iota
	GeneralLines
	UpsellLines
)

// ProductPerf is the per-product purchase performance over a run's line
// items: total quantity, distinct unit prices seen, summed line revenue.
type ProductPerf struct {
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Qty        int64     `json:"qty"`
	UnitPrices []float64 `json:"unitPrices"`
	Revenue    float64   `json:"revenue"`
}

// ProductSummary aggregates line items per (product code, name), sorted by
// revenue descending, ties by code.
func ProductSummary(items []normalize.LineItem, filter ClassFilter) []ProductPerf {
	type key struct{ code, name string }
	agg := make(map[key]*ProductPerf)
	prices := make(map[key]map[float64]bool)
	var order []key

	for _, it := range items {
		if it.ProductCode == "" {
			continue
		}
		if filter == GeneralLines && it.IsUpsell {
			continue
		}
		if filter == UpsellLines && !it.IsUpsell {
			continue
		}
		k := key{it.ProductCode, it.ProductName}
		p := agg[k]
		if p == nil {
			p = &ProductPerf{Code: it.ProductCode, Name: it.ProductName}
			agg[k] = p
			prices[k] = make(map[float64]bool)
			order = append(order, k)
		}
		p.Qty += it.Qty
		if it.UnitPrice > 0 && !prices[k][it.UnitPrice] {
			prices[k][it.UnitPrice] = true
			p.UnitPrices = append(p.UnitPrices, it.UnitPrice)
		}
		if it.HasLineAmount {
			p.Revenue += it.LineAmount
		}
	}

	out := make([]ProductPerf, 0, len(order))
	for _, k := range order {
		p := agg[k]
		sort.Float64s(p.UnitPrices)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Code < out[j].Code
	})
	return out
}
