package example

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCommitNewDatapointsAssignsIDs(t *testing.T) {
	store := NewStore("dev")
	committed, err := store.CommitNewDatapoints([]InputExample{
		{Data: map[string]any{"sentence": "hello"}},
		{ID: "ex-2", Data: map[string]any{"sentence": "world"}},
	})
	if err != nil {
		t.Fatalf("CommitNewDatapoints failed: %v", err)
	}
	if len(committed) != 2 {
		t.Fatalf("expected 2 committed examples, got %d", len(committed))
	}
	if committed[0].ID == "" {
		t.Errorf("blank id was not assigned")
	}
	if committed[1].ID != "ex-2" {
		t.Errorf("existing id was replaced: %s", committed[1].ID)
	}
	if store.Len() != 2 {
		t.Errorf("store holds %d examples, want 2", store.Len())
	}
}

func TestCommitNewDatapointsIsIdempotentPerID(t *testing.T) {
	store := NewStore("dev")
	ex := InputExample{ID: "ex-1", Data: map[string]any{"sentence": "hello"}}
	if _, err := store.CommitNewDatapoints([]InputExample{ex}); err != nil {
		t.Fatalf("first commit failed: %v", err)
	}
	ex.Data["sentence"] = "updated"
	if _, err := store.CommitNewDatapoints([]InputExample{ex}); err != nil {
		t.Fatalf("second commit failed: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("repeat commit duplicated the datapoint: len=%d", store.Len())
	}
	got, ok := store.Lookup("ex-1")
	if !ok {
		t.Fatalf("ex-1 missing after recommit")
	}
	if got.Data["sentence"] != "updated" {
		t.Errorf("recommit did not overwrite in place: %v", got.Data["sentence"])
	}
}

func TestCommitNewDatapointsRejectsEmptyData(t *testing.T) {
	store := NewStore("dev")
	if _, err := store.CommitNewDatapoints([]InputExample{{ID: "bad"}}); err == nil {
		t.Fatalf("expected error for example without data")
	}
}

func TestLookupReturnsIsolatedCopy(t *testing.T) {
	store := NewStore("dev", InputExample{ID: "ex-1", Data: map[string]any{"sentence": "hello"}})
	got, _ := store.Lookup("ex-1")
	got.Data["sentence"] = "mutated"
	again, _ := store.Lookup("ex-1")
	if again.Data["sentence"] != "hello" {
		t.Errorf("caller mutation leaked into the store")
	}
}

func TestLookupAllSkipsUnknownIDs(t *testing.T) {
	store := NewStore("dev",
		InputExample{ID: "a", Data: map[string]any{"v": 1}},
		InputExample{ID: "b", Data: map[string]any{"v": 2}},
	)
	got := store.LookupAll([]string{"b", "missing", "a"})
	if len(got) != 2 {
		t.Fatalf("expected 2 resolved examples, got %d", len(got))
	}
	if got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("order not preserved: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestLoadDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dev.jsonl")
	content := strings.Join([]string{
		`{"id":"ex-1","data":{"sentence":"hello","label":"pos"}}`,
		``,
		`{"id":"ex-2","data":{"sentence":"world","label":"neg"}}`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	store, err := LoadDataset("", path)
	if err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}
	if store.DatasetName() != "dev" {
		t.Errorf("dataset name = %s, want dev", store.DatasetName())
	}
	if store.Len() != 2 {
		t.Errorf("loaded %d examples, want 2", store.Len())
	}
	examples := store.Examples()
	if examples[0].ID != "ex-1" || examples[1].ID != "ex-2" {
		t.Errorf("file order not preserved: %s, %s", examples[0].ID, examples[1].ID)
	}
}

func TestLoadDatasetReportsBadLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.jsonl")
	content := `{"id":"ex-1","data":{"sentence":"ok"}}` + "\nnot json\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	_, err := LoadDataset("broken", path)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error does not name the line: %v", err)
	}
}

func TestCommittedMarkerTolerance(t *testing.T) {
	cases := []struct {
		name string
		meta map[string]any
		want bool
	}{
		{"int committed", map[string]any{MetaAdded: AddedCommitted}, true},
		{"int pending", map[string]any{MetaAdded: AddedPending}, false},
		{"float from json", map[string]any{MetaAdded: float64(1)}, true},
		{"bool", map[string]any{MetaAdded: true}, true},
		{"absent", nil, false},
	}
	for _, tc := range cases {
		ex := InputExample{ID: "x", Meta: tc.meta}
		if ex.Committed() != tc.want {
			t.Errorf("%s: Committed() = %v, want %v", tc.name, ex.Committed(), tc.want)
		}
	}
}

func TestMarkPendingDoesNotClobber(t *testing.T) {
	ex := InputExample{ID: "x", Meta: map[string]any{MetaAdded: AddedCommitted}}
	ex.MarkPending()
	if !ex.Committed() {
		t.Errorf("MarkPending overwrote an existing marker")
	}
	fresh := InputExample{ID: "y"}
	fresh.MarkPending()
	if fresh.Committed() {
		t.Errorf("fresh example should carry the pending marker")
	}
}
