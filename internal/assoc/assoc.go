package assoc

import (
	"sort"

	"uplens/internal/normalize"
	"uplens/internal/pairstore"
)

// OrderProducts is one order's distinct product identifiers, split by line
// class. Built from LineItems after line-level dedup on
// (order, product code, product option); repeated lines of the same
// product collapse, so an order contributes each pair at most once.
type OrderProducts struct {
	OrderID string
	All     []string
	General []string
	Upsell  []string
}

// GroupProducts folds line items into per-order product sets, preserving
// first-seen order of both orders and products.
func GroupProducts(items []normalize.LineItem) []OrderProducts {
	idx := make(map[string]int)
	lineSeen := make(map[string]bool)
	prodSeen := make(map[string]bool)
	var out []OrderProducts

	for _, it := range items {
		if it.ProductCode == "" {
			continue
		}
		i, ok := idx[it.OrderID]
		if !ok {
			i = len(out)
			idx[it.OrderID] = i
			out = append(out, OrderProducts{OrderID: it.OrderID})
		}
		lineKey := it.OrderID + "\x1f" + it.ProductCode + "\x1f" + it.ProductOption
		if lineSeen[lineKey] {
			continue
		}
		lineSeen[lineKey] = true

		prodKey := it.OrderID + "\x1f" + it.ProductCode
		op := &out[i]
		if !prodSeen[prodKey] {
			prodSeen[prodKey] = true
			op.All = append(op.All, it.ProductCode)
		}
		// class lists keep their own dedup: the same code can appear as
		// both a general and an upsell line within one order
		if it.IsUpsell {
			if !contains(op.Upsell, it.ProductCode) {
				op.Upsell = append(op.Upsell, it.ProductCode)
			}
		} else {
			if !contains(op.General, it.ProductCode) {
				op.General = append(op.General, it.ProductCode)
			}
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// Related is one co-purchased partner of a queried product.
type Related struct {
	Product string `json:"product"`
	Count   int64  `json:"count"`
}

// Miner counts unordered product pairs across orders. Counts live in a
// per-product partner index, so related-product queries touch only the
// pairs involving the queried product.
type Miner struct {
	partners map[string]map[string]int64
	rank     map[string]int // first-seen rank, tie-break for Related
	next     int
}

func NewMiner() *Miner {
	return &Miner{partners: make(map[string]map[string]int64), rank: make(map[string]int)}
}

// AddOrder counts every unordered 2-combination of one order's distinct
// products, once per order. Single-product orders contribute nothing.
func (m *Miner) AddOrder(products []string) {
	for _, p := range products {
		m.see(p)
	}
	for i := 0; i < len(products); i++ {
		for j := i + 1; j < len(products); j++ {
			if products[i] == products[j] {
				continue
			}
			m.bump(products[i], products[j], 1)
			m.bump(products[j], products[i], 1)
		}
	}
}

func (m *Miner) see(p string) {
	if _, ok := m.rank[p]; !ok {
		m.rank[p] = m.next
		m.next++
	}
}

func (m *Miner) bump(a, b string, delta int64) {
	ps := m.partners[a]
	if ps == nil {
		ps = make(map[string]int64)
		m.partners[a] = ps
	}
	ps[b] += delta
}

// Count returns the co-occurrence count of an unordered pair. Symmetric:
// Count(a, b) == Count(b, a).
func (m *Miner) Count(a, b string) int64 {
	return m.partners[a][b]
}

// PairCount returns the number of distinct unordered pairs seen so far.
func (m *Miner) PairCount() int {
	n := 0
	for a, ps := range m.partners {
		for b := range ps {
			if a < b {
				n++
			}
		}
	}
	return n
}

// Related returns every product co-purchased with the queried one, sorted
// by count descending, ties broken by first-seen input order.
func (m *Miner) Related(product string) []Related {
	ps := m.partners[product]
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
		return m.rank[out[i].Product] < m.rank[out[j].Product]
	})
	return out
}

// Merge folds another miner's counts into this one. Addition is
// commutative and associative, so shard merge order never affects final
// counts; first-seen ranks keep the receiver's ordering for shared
// products.
func (m *Miner) Merge(other *Miner) {
	for p := range other.rank {
		m.see(p)
	}
	for a, ps := range other.partners {
		for b, c := range ps {
			m.bump(a, b, c)
		}
	}
}

// Persist applies the miner's canonical pair counts to a Store under the
// given run sequence. Re-persisting the same run is a no-op per key.
func (m *Miner) Persist(st pairstore.Store, seq int64) error {
	for a, ps := range m.partners {
		for b, c := range ps {
			if a >= b {
				continue // store each unordered pair once, canonically
			}
			if _, _, err := st.Apply(PairKey(a, b), c, seq); err != nil {
				return err
			}
		}
	}
	return nil
}

// PairKey is the canonical store key of an unordered pair.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return "all#" + a + "#" + b
}
