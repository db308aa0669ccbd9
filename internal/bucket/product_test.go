package bucket

import (
	"testing"

	"uplens/internal/normalize"
)

func TestProductSummary(t *testing.T) {
	items := []normalize.LineItem{
		{ProductCode: "P1", ProductName: "Serum", IsUpsell: true, UnitPrice: 9000, Qty: 2, LineAmount: 18000, HasLineAmount: true},
		{ProductCode: "P1", ProductName: "Serum", IsUpsell: true, UnitPrice: 8000, Qty: 1, LineAmount: 8000, HasLineAmount: true},
		{ProductCode: "P1", ProductName: "Serum", IsUpsell: true, UnitPrice: 9000, Qty: 1, LineAmount: 9000, HasLineAmount: true},
		{ProductCode: "P2", ProductName: "Balm", IsUpsell: true, UnitPrice: 7000, Qty: 1, LineAmount: 7000, HasLineAmount: true},
		{ProductCode: "P3", ProductName: "Cream", IsUpsell: false, UnitPrice: 24000, Qty: 1, LineAmount: 24000, HasLineAmount: true},
		{ProductCode: "", ProductName: "no code", IsUpsell: true},
	}

	out := ProductSummary(items, UpsellLines)
	if len(out) != 2 {
		t.Fatalf("want 2 upsell products, got %+v", out)
	}
	p1 := out[0] // highest revenue first
	if p1.Code != "P1" || p1.Qty != 4 || p1.Revenue != 35000 {
		t.Fatalf("unexpected P1 summary: %+v", p1)
	}
	// distinct unit prices, ascending
	if len(p1.UnitPrices) != 2 || p1.UnitPrices[0] != 8000 || p1.UnitPrices[1] != 9000 {
		t.Fatalf("unexpected unit prices: %+v", p1.UnitPrices)
	}
	if out[1].Code != "P2" {
		t.Fatalf("unexpected second product: %+v", out[1])
	}
}

func TestProductSummary_AllLinesAndTies(t *testing.T) {
	items := []normalize.LineItem{
		{ProductCode: "B", ProductName: "b", LineAmount: 100, HasLineAmount: true, Qty: 1},
		{ProductCode: "A", ProductName: "a", LineAmount: 100, HasLineAmount: true, Qty: 1},
	}
	out := ProductSummary(items, AllLines)
	if len(out) != 2 || out[0].Code != "A" || out[1].Code != "B" {
		t.Fatalf("revenue ties should order by code: %+v", out)
	}
}
