package assoc

import "testing"

func TestUpsellMiner(t *testing.T) {
	u := NewUpsellMiner()
	u.AddOrder([]string{"G1", "G2"}, []string{"U1"})
	u.AddOrder([]string{"G1"}, []string{"U1", "U2"})
	u.AddOrder([]string{"G1"}, nil) // no upsell side, nothing counted
	u.AddOrder(nil, []string{"U1"}) // no general side, nothing counted
	u.AddOrder([]string{"G3"}, []string{"U2"})

	if got := u.Count("G1", "U1"); got != 2 {
		t.Fatalf("Count(G1,U1) = %d, want 2", got)
	}
	if got := u.Count("G2", "U1"); got != 1 {
		t.Fatalf("Count(G2,U1) = %d, want 1", got)
	}
	// directed: the upsell product never appears as a trigger
	if got := u.Count("U1", "G1"); got != 0 {
		t.Fatalf("reverse direction should be 0, got %d", got)
	}

	rel := u.AttachedTo("G1")
	if len(rel) != 2 || rel[0].Product != "U1" || rel[0].Count != 2 || rel[1].Product != "U2" {
		t.Fatalf("unexpected attachments: %+v", rel)
	}
	if u.AttachedTo("G9") != nil {
		t.Fatalf("unknown general product should have no attachments")
	}
}
