package kb

import "testing"

func TestDefaultCatalog_EntriesWellFormed(t *testing.T) {
	c := Default()
	entries := c.All()
	if len(entries) == 0 {
		t.Fatal("default catalog is empty")
	}
	for _, e := range entries {
		if e.ID == "" {
			t.Error("entry with empty ID")
		}
		if e.Title == "" {
			t.Errorf("entry %s has empty title", e.ID)
		}
		if len(e.Categories) == 0 {
			t.Errorf("entry %s has no categories", e.ID)
		}
		if e.Description == "" {
			t.Errorf("entry %s has empty description", e.ID)
		}
		if e.Remediation == "" {
			t.Errorf("entry %s has empty remediation", e.ID)
		}
	}
}

func TestCatalog_Get(t *testing.T) {
	c := Default()
	e, ok := c.Get(KGV001VarLogMount)
	if !ok {
		t.Fatalf("entry %s not found", KGV001VarLogMount)
	}
	if e.Title != "Pod With Mount To /var/log" {
		t.Errorf("Title = %q; want %q", e.Title, "Pod With Mount To /var/log")
	}

	if _, ok := c.Get("KGV999"); ok {
		t.Error("expected lookup miss for unknown ID")
	}
}

func TestCatalog_RegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate entry ID")
		}
	}()
	c := NewCatalog()
	c.Register(Entry{ID: "X", Title: "x"})
	c.Register(Entry{ID: "X", Title: "x again"})
}

func TestCatalog_RegisterEmptyIDPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on empty entry ID")
		}
	}()
	NewCatalog().Register(Entry{Title: "no id"})
}

func TestCatalog_AllPreservesRegistrationOrder(t *testing.T) {
	c := NewCatalog()
	c.Register(Entry{ID: "B", Title: "b"})
	c.Register(Entry{ID: "A", Title: "a"})
	all := c.All()
	if len(all) != 2 || all[0].ID != "B" || all[1].ID != "A" {
		t.Errorf("registration order not preserved: %v", all)
	}
}
