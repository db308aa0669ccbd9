package pairstore

import "testing"

func TestBadgerStore_ApplySeqRules(t *testing.T) {
	st, err := NewBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()

	applied, pc, err := st.Apply("all#x#y", 2, 1)
	if err != nil || !applied {
		t.Fatalf("first apply: applied=%v err=%v", applied, err)
	}
	if pc.Count != 2 {
		t.Fatalf("unexpected state: %+v", pc)
	}

	applied, pc, err = st.Apply("all#x#y", 2, 1)
	if err != nil {
		t.Fatalf("re-apply: %v", err)
	}
	if applied || pc.Count != 2 {
		t.Fatalf("same seq should be a no-op: applied=%v %+v", applied, pc)
	}

	applied, pc, err = st.Apply("all#x#y", 3, 2)
	if err != nil || !applied || pc.Count != 5 {
		t.Fatalf("next seq should accumulate: applied=%v %+v err=%v", applied, pc, err)
	}
}
