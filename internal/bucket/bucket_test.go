package bucket

import (
	"testing"

	"uplens/internal/normalize"
)

func ordersWithTotals(totals ...float64) []normalize.Order {
	out := make([]normalize.Order, len(totals))
	for i, v := range totals {
		out[i] = normalize.Order{TotalAmount: v, ItemCount: 1}
	}
	return out
}

func TestAssign(t *testing.T) {
	cases := []struct {
		amount float64
		want   int64
	}{
		{0, 0},
		{9999, 0},
		{10000, 10000}, // exact boundary falls into its own band
		{15500, 10000},
		{199999, 190000},
		{200000, 200000},
		{950000, 200000}, // capped
		{-5, 0},
	}
	for _, c := range cases {
		if got := Assign(c.amount, 10000, 200000); got != c.want {
			t.Fatalf("Assign(%v) = %d, want %d", c.amount, got, c.want)
		}
	}
}

func TestHistogram_ZeroFilled(t *testing.T) {
	orders := ordersWithTotals(5000, 15000, 15999, 250000)
	bands := Histogram(orders, 10000, 200000)

	if len(bands) != 21 {
		t.Fatalf("want 21 bands for width 10000 cap 200000, got %d", len(bands))
	}
	for i, b := range bands {
		if b.Lower != int64(i)*10000 {
			t.Fatalf("band %d lower = %d", i, b.Lower)
		}
	}
	if bands[0].Count != 1 || bands[1].Count != 2 || bands[20].Count != 1 {
		t.Fatalf("unexpected counts: %+v", bands)
	}
	// every other band is present with zero count
	for i, b := range bands {
		if i != 0 && i != 1 && i != 20 && b.Count != 0 {
			t.Fatalf("band %d should be zero, got %d", i, b.Count)
		}
	}
}

func TestShares_EmptyHistogram(t *testing.T) {
	bands := Histogram(nil, 10000, 200000)
	for i, s := range Shares(bands) {
		if s != 0 {
			t.Fatalf("share %d = %v, want 0 on empty input", i, s)
		}
	}
}

func TestItemCountDistAndGroupOthers(t *testing.T) {
	var orders []normalize.Order
	add := func(items, n int) {
		for i := 0; i < n; i++ {
			orders = append(orders, normalize.Order{ItemCount: items})
		}
	}
	add(1, 49)
	add(2, 49)
	add(3, 2) // 2% of 100, below the 3% floor

	dist := ItemCountDist(orders)
	if len(dist) != 3 || dist[0].Items != 1 || dist[2].Items != 3 {
		t.Fatalf("unexpected distribution: %+v", dist)
	}

	slices := GroupOthers(dist, 3)
	if len(slices) != 3 {
		t.Fatalf("want 2 slices + Others, got %+v", slices)
	}
	last := slices[len(slices)-1]
	if last.Label != "Others" || last.Count != 2 || last.Share != 2 {
		t.Fatalf("unexpected Others slice: %+v", last)
	}
}

func TestGroupOthers_Empty(t *testing.T) {
	if got := GroupOthers(nil, 3); got != nil {
		t.Fatalf("want nil for empty distribution, got %+v", got)
	}
}

func TestMemberSplit(t *testing.T) {
	orders := []normalize.Order{
		{IsGuest: false}, {IsGuest: true}, {IsGuest: false},
	}
	members, guests := MemberSplit(orders)
	if members != 2 || guests != 1 {
		t.Fatalf("MemberSplit = %d, %d", members, guests)
	}
}
