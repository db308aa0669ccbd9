package assoc

import "sort"

// UpsellMiner counts directed (general product, upsell product) pairs: the
// general line is the trigger, the upsell line the attached item, so the
// pair is not symmetric.
type UpsellMiner struct {
	attached map[string]map[string]int64 // general -> upsell -> count
	rank     map[string]int
	next     int
}

func NewUpsellMiner() *UpsellMiner {
	return &UpsellMiner{attached: make(map[string]map[string]int64), rank: make(map[string]int)}
}

// AddOrder cross-products one order's distinct general products with its
// distinct upsell products, incrementing each directed pair once per
// order. Orders lacking either side contribute nothing.
func (u *UpsellMiner) AddOrder(general, upsell []string) {
	for _, p := range upsell {
		if _, ok := u.rank[p]; !ok {
			u.rank[p] = u.next
			u.next++
		}
	}
	for _, g := range general {
		for _, up := range upsell {
			ps := u.attached[g]
			if ps == nil {
				ps = make(map[string]int64)
				u.attached[g] = ps
			}
			ps[up]++
		}
	}
}

// Count returns how many orders attached the upsell product to the general
// one.
func (u *UpsellMiner) Count(general, upsell string) int64 {
	return u.attached[general][upsell]
}

// AttachedTo returns the upsell products purchased together with a general
// product, sorted by count descending, ties by first-seen order.
func (u *UpsellMiner) AttachedTo(general string) []Related {
	ps := u.attached[general]
	if len(ps) == 0 {
		return nil
	}
	out := make([]Related, 0, len(ps))
	for p, c := range ps {
		out = append(out, Related{Product: p, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return u.rank[out[i].Product] < u.rank[out[j].Product]
	})
	return out
}
