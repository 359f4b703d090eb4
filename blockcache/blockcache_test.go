package blockcache

import "testing"

func mustPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic, got none", name)
		}
	}()
	f()
}

func TestInsertValidatesExtent(t *testing.T) {
	c := New()
	mustPanic(t, "EndPC<EntryPC", func() {
		c.Insert(&BlockInfo{EntryPC: 0x1000, EndPC: 0x0FFC, HostEntry: 0, HostSize: 4})
	})
}

func TestInsertValidatesHostSize(t *testing.T) {
	c := New()
	mustPanic(t, "HostSize<=0", func() {
		c.Insert(&BlockInfo{EntryPC: 0x1000, EndPC: 0x1004, HostEntry: 0, HostSize: 0})
	})
}

func TestInsertValidatesHostEntry(t *testing.T) {
	c := New()
	mustPanic(t, "HostEntry<0", func() {
		c.Insert(&BlockInfo{EntryPC: 0x1000, EndPC: 0x1004, HostEntry: -1, HostSize: 4})
	})
}

func TestLookupHitAndMiss(t *testing.T) {
	c := New()
	bi := &BlockInfo{EntryPC: 0x2000, EndPC: 0x2008, HostEntry: 16, HostSize: 32}
	c.Insert(bi)

	got, ok := c.Lookup(0x2000)
	if !ok {
		t.Fatal("Lookup: expected hit")
	}
	if got != bi {
		t.Error("Lookup: returned a different *BlockInfo than was inserted")
	}

	if _, ok := c.Lookup(0x3000); ok {
		t.Error("Lookup: expected miss at untracked PC")
	}
}

func TestInvalidateAll(t *testing.T) {
	c := New()
	c.Insert(&BlockInfo{EntryPC: 0x1000, EndPC: 0x1004, HostEntry: 0, HostSize: 4})
	c.Insert(&BlockInfo{EntryPC: 0x2000, EndPC: 0x2004, HostEntry: 4, HostSize: 4})

	c.InvalidateAll()

	if _, ok := c.Lookup(0x1000); ok {
		t.Error("Lookup after InvalidateAll: expected miss")
	}
	if len(c.Active()) != 0 {
		t.Error("Active after InvalidateAll: expected empty")
	}
}

func TestActiveOrderAndDefensiveCopy(t *testing.T) {
	c := New()
	first := &BlockInfo{EntryPC: 0x1000, EndPC: 0x1004, HostEntry: 0, HostSize: 4}
	second := &BlockInfo{EntryPC: 0x2000, EndPC: 0x2004, HostEntry: 4, HostSize: 4}
	c.Insert(first)
	c.Insert(second)

	active := c.Active()
	if len(active) != 2 || active[0] != first || active[1] != second {
		t.Fatalf("Active: got %v, want [first, second] in insertion order", active)
	}

	active[0] = nil
	again := c.Active()
	if again[0] != first {
		t.Error("Active: mutating a returned slice affected the cache's internal state")
	}
}
