package bucket

import (
	"fmt"
	"sort"

	"uplens/internal/normalize"
)

// Band is one fixed-width amount range of an order-value histogram,
// identified by its integer lower bound. The top band (Lower == cap) means
// "cap or more".
type Band struct {
	Lower int64 `json:"lower"`
	Count int   `json:"count"`
}

// Assign returns the band lower bound for an amount:
// min(floor(amount/width)*width, cap). Floor semantics, so a value exactly
// at a width multiple falls into that band.
func Assign(amount float64, width, cap int64) int64 {
	if amount < 0 {
		return 0
	}
	b := (int64(amount) / width) * width
	if b > cap {
		return cap
	}
	return b
}

// Histogram buckets order totals into a complete, contiguous, zero-filled
// band sequence from 0 to cap inclusive. Sparse input never shortens the
// sequence: absent bands appear with Count 0.
func Histogram(orders []normalize.Order, width, cap int64) []Band {
	n := int(cap/width) + 1
	bands := make([]Band, n)
	for i := range bands {
		bands[i].Lower = int64(i) * width
	}
	for _, o := range orders {
		i := Assign(o.TotalAmount, width, cap) / width
		bands[i].Count++
	}
	return bands
}

// Shares converts band counts to percentages of the total. An empty
// histogram yields 0 for every band rather than dividing by zero.
func Shares(bands []Band) []float64 {
	total := 0
	for _, b := range bands {
		total += b.Count
	}
	out := make([]float64, len(bands))
	if total == 0 {
		return out
	}
	for i, b := range bands {
		out[i] = float64(b.Count) / float64(total) * 100
	}
	return out
}

// ItemBand is one slice of the items-per-order distribution.
type ItemBand struct {
	Items int `json:"items"`
	Count int `json:"count"`
}

// ItemCountDist counts orders by number of line items, ascending by item
// count.
func ItemCountDist(orders []normalize.Order) []ItemBand {
	byItems := make(map[int]int)
	for _, o := range orders {
		byItems[o.ItemCount]++
	}
	out := make([]ItemBand, 0, len(byItems))
	for items, count := range byItems {
		out = append(out, ItemBand{Items: items, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Items < out[j].Items })
	return out
}

// Slice is a labeled share of a distribution, for pie-style breakdowns.
type Slice struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// GroupOthers folds distribution entries below minShare percent into a
// single trailing "Others" slice so tiny slivers don't clutter the
// breakdown.
func GroupOthers(dist []ItemBand, minShare float64) []Slice {
	total := 0
	for _, b := range dist {
		total += b.Count
	}
	if total == 0 {
		return nil
	}
	var out []Slice
	others := 0
	for _, b := range dist {
		share := float64(b.Count) / float64(total) * 100
		if share < minShare {
			others += b.Count
			continue
		}
		out = append(out, Slice{Label: fmt.Sprintf("%d", b.Items), Count: b.Count, Share: share})
	}
	if others > 0 {
		out = append(out, Slice{
			Label: "Others",
			Count: others,
			Share: float64(others) / float64(total) * 100,
		})
	}
	return out
}

// MemberSplit counts member and guest orders.
func MemberSplit(orders []normalize.Order) (members, guests int) {
	for _, o := range orders {
		if o.IsGuest {
			guests++
		} else {
			members++
		}
	}
	return members, guests
}
