package selection

import "testing"

func TestSelectIDsDropsOrphanedPrimary(t *testing.T) {
	c := NewContext(RolePrimary)
	c.SelectIDs([]string{"a", "b"}, "test")
	if err := c.SetPrimary("a", "test"); err != nil {
		t.Fatalf("SetPrimary failed: %v", err)
	}
	c.SelectIDs([]string{"b", "c"}, "test")
	if c.PrimaryID() != "" {
		t.Errorf("primary survived reselection without its id: %q", c.PrimaryID())
	}
}

func TestSetPrimaryRequiresMembership(t *testing.T) {
	c := NewContext(RolePrimary)
	c.SelectIDs([]string{"a"}, "test")
	if err := c.SetPrimary("b", "test"); err == nil {
		t.Fatalf("expected error for non-member primary")
	}
	if err := c.SetPrimary("", "test"); err != nil {
		t.Fatalf("clearing the primary should always work: %v", err)
	}
}

func TestAddIDsUnionPreservesOrder(t *testing.T) {
	c := NewContext(RolePrimary)
	c.SelectIDs([]string{"a", "b"}, "test")
	c.AddIDs([]string{"b", "c", "a", "d"}, "test")
	got := c.SelectedIDs()
	want := []string{"a", "b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("selected = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("selected = %v, want %v", got, want)
		}
	}
}

func TestObserversSeeOwnerAttribution(t *testing.T) {
	c := NewContext(RolePrimary)
	var events []Event
	c.Observe(func(ev Event) { events = append(events, ev) })

	c.SelectIDs([]string{"a"}, "committer")
	if err := c.SetPrimary("a", "committer"); err != nil {
		t.Fatalf("SetPrimary failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Kind != ChangeSelected || events[1].Kind != ChangePrimary {
		t.Errorf("event kinds = %s, %s", events[0].Kind, events[1].Kind)
	}
	for _, ev := range events {
		if ev.Owner != "committer" {
			t.Errorf("event owner = %q, want committer", ev.Owner)
		}
		if ev.Role != RolePrimary {
			t.Errorf("event role = %q, want primary", ev.Role)
		}
	}
}

func TestAddIDsNoChangeNoNotify(t *testing.T) {
	c := NewContext(RolePrimary)
	c.SelectIDs([]string{"a"}, "test")
	notified := 0
	c.Observe(func(Event) { notified++ })
	c.AddIDs([]string{"a"}, "test")
	if notified != 0 {
		t.Errorf("no-op union notified %d time(s)", notified)
	}
}

func TestSetPrimarySameValueNoNotify(t *testing.T) {
	c := NewContext(RolePrimary)
	c.SelectIDs([]string{"a"}, "test")
	if err := c.SetPrimary("a", "test"); err != nil {
		t.Fatalf("SetPrimary failed: %v", err)
	}
	notified := 0
	c.Observe(func(Event) { notified++ })
	if err := c.SetPrimary("a", "other"); err != nil {
		t.Fatalf("SetPrimary failed: %v", err)
	}
	if notified != 0 {
		t.Errorf("re-setting the same primary notified %d time(s)", notified)
	}
	if c.LastMutator() != "test" {
		t.Errorf("no-op write changed the last mutator to %q", c.LastMutator())
	}
}

func TestSelectAndFocus(t *testing.T) {
	c := NewContext(RolePrimary)
	if err := c.SelectAndFocus([]string{"a", "b"}, "user"); err != nil {
		t.Fatalf("SelectAndFocus failed: %v", err)
	}
	if c.PrimaryID() != "a" {
		t.Errorf("primary = %q, want a", c.PrimaryID())
	}
	if err := c.SelectAndFocus(nil, "user"); err != nil {
		t.Fatalf("empty SelectAndFocus failed: %v", err)
	}
	if c.PrimaryID() != "" || len(c.SelectedIDs()) != 0 {
		t.Errorf("empty SelectAndFocus left state behind: %q %v", c.PrimaryID(), c.SelectedIDs())
	}
}

func TestPairRoles(t *testing.T) {
	p := NewPair()
	if p.ByRole(RolePrimary) != p.Primary() {
		t.Errorf("ByRole(primary) did not resolve the primary context")
	}
	if p.ByRole(RoleReference) != p.Reference() {
		t.Errorf("ByRole(reference) did not resolve the reference context")
	}
	if p.ByRole("elsewhere") != nil {
		t.Errorf("unknown role should resolve to nil")
	}
	if p.ComparisonMode() {
		t.Errorf("comparison mode should start off")
	}
	p.SetComparisonMode(true)
	if !p.ComparisonMode() {
		t.Errorf("comparison mode did not toggle on")
	}
}
