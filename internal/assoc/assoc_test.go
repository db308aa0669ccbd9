package assoc

import (
	"testing"

	"uplens/internal/normalize"
	"uplens/internal/pairstore"
)

func TestGroupProducts(t *testing.T) {
	items := []normalize.LineItem{
		{OrderID: "O1", ProductCode: "X", ProductOption: "red", IsUpsell: false},
		{OrderID: "O1", ProductCode: "X", ProductOption: "red", IsUpsell: false}, // duplicate line
		{OrderID: "O1", ProductCode: "X", ProductOption: "blue", IsUpsell: false},
		{OrderID: "O1", ProductCode: "Y", IsUpsell: true},
		{OrderID: "O2", ProductCode: "X", IsUpsell: false},
		{OrderID: "O2", ProductCode: "", IsUpsell: false}, // no code, ignored
	}

	groups := GroupProducts(items)
	if len(groups) != 2 {
		t.Fatalf("want 2 orders, got %+v", groups)
	}
	g := groups[0]
	if g.OrderID != "O1" {
		t.Fatalf("unexpected first group: %+v", g)
	}
	// two options of X collapse to one product in All
	if len(g.All) != 2 || g.All[0] != "X" || g.All[1] != "Y" {
		t.Fatalf("unexpected All: %+v", g.All)
	}
	if len(g.General) != 1 || g.General[0] != "X" {
		t.Fatalf("unexpected General: %+v", g.General)
	}
	if len(g.Upsell) != 1 || g.Upsell[0] != "Y" {
		t.Fatalf("unexpected Upsell: %+v", g.Upsell)
	}
	if len(groups[1].All) != 1 {
		t.Fatalf("unexpected second group: %+v", groups[1])
	}
}

func TestMiner_Counts(t *testing.T) {
	m := NewMiner()
	m.AddOrder([]string{"X", "Y", "Z"})
	m.AddOrder([]string{"X", "Y"})
	m.AddOrder([]string{"Z"}) // single product, no pairs

	if got := m.Count("X", "Y"); got != 2 {
		t.Fatalf("Count(X,Y) = %d, want 2", got)
	}
	if m.Count("X", "Y") != m.Count("Y", "X") {
		t.Fatalf("counts must be symmetric")
	}
	if m.Count("X", "Z") != 1 || m.Count("Y", "Z") != 1 {
		t.Fatalf("unexpected counts: XZ=%d YZ=%d", m.Count("X", "Z"), m.Count("Y", "Z"))
	}
	if m.Count("Z", "Z") != 0 {
		t.Fatalf("self pairs must not count")
	}
	if m.PairCount() != 3 {
		t.Fatalf("PairCount = %d, want 3", m.PairCount())
	}
}

func TestMiner_RelatedOrdering(t *testing.T) {
	m := NewMiner()
	m.AddOrder([]string{"A", "B"})
	m.AddOrder([]string{"A", "B"})
	m.AddOrder([]string{"A", "C"})
	m.AddOrder([]string{"A", "D"})

	rel := m.Related("A")
	if len(rel) != 3 {
		t.Fatalf("want 3 partners, got %+v", rel)
	}
	if rel[0].Product != "B" || rel[0].Count != 2 {
		t.Fatalf("highest count first: %+v", rel)
	}
	// C and D tie at 1; C was seen first
	if rel[1].Product != "C" || rel[2].Product != "D" {
		t.Fatalf("ties should keep first-seen order: %+v", rel)
	}

	if m.Related("unknown") != nil {
		t.Fatalf("unknown product should have no partners")
	}
}

func TestMiner_Monotonic(t *testing.T) {
	m := NewMiner()
	m.AddOrder([]string{"X", "Y"})
	before := m.Count("X", "Y")

	// adding unrelated and overlapping orders never decreases a count
	m.AddOrder([]string{"A", "B"})
	m.AddOrder([]string{"X", "Z"})
	m.AddOrder([]string{"X", "Y", "Z"})
	if m.Count("X", "Y") < before {
		t.Fatalf("count decreased: %d -> %d", before, m.Count("X", "Y"))
	}
	if m.Count("X", "Y") != 2 {
		t.Fatalf("Count(X,Y) = %d, want 2", m.Count("X", "Y"))
	}
}

func TestMiner_MergeOrderInvariance(t *testing.T) {
	build := func(orders ...[]string) *Miner {
		m := NewMiner()
		for _, o := range orders {
			m.AddOrder(o)
		}
		return m
	}
	s1 := [][]string{{"X", "Y"}, {"X", "Z"}}
	s2 := [][]string{{"X", "Y"}, {"Y", "Z"}}

	a := build(s1...)
	a.Merge(build(s2...))
	b := build(s2...)
	b.Merge(build(s1...))

	for _, pair := range [][2]string{{"X", "Y"}, {"X", "Z"}, {"Y", "Z"}} {
		if a.Count(pair[0], pair[1]) != b.Count(pair[0], pair[1]) {
			t.Fatalf("merge order changed count for %v: %d vs %d",
				pair, a.Count(pair[0], pair[1]), b.Count(pair[0], pair[1]))
		}
	}
	if a.Count("X", "Y") != 2 {
		t.Fatalf("merged Count(X,Y) = %d, want 2", a.Count("X", "Y"))
	}
}

func TestMiner_Persist(t *testing.T) {
	m := NewMiner()
	m.AddOrder([]string{"X", "Y", "Z"})

	st := pairstore.NewInMemoryStore()
	if err := m.Persist(st, 1); err != nil {
		t.Fatalf("persist: %v", err)
	}
	pc, ok := st.Get(PairKey("Y", "X"))
	if !ok || pc.Count != 1 {
		t.Fatalf("canonical key lookup failed: %+v ok=%v", pc, ok)
	}

	// retried run under the same seq must not double-count
	if err := m.Persist(st, 1); err != nil {
		t.Fatalf("re-persist: %v", err)
	}
	pc, _ = st.Get(PairKey("X", "Y"))
	if pc.Count != 1 {
		t.Fatalf("re-persist doubled count: %+v", pc)
	}

	// only canonical a<b keys are written
	n := 0
	_ = st.Range(func(string, pairstore.PairCount) error { n++; return nil })
	if n != 3 {
		t.Fatalf("want 3 canonical pairs, got %d", n)
	}
}

func TestPairKey(t *testing.T) {
	if PairKey("b", "a") != PairKey("a", "b") {
		t.Fatalf("pair key must be order independent")
	}
	if PairKey("a", "b") != "all#a#b" {
		t.Fatalf("unexpected key: %s", PairKey("a", "b"))
	}
}
