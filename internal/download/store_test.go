package download

import (
	"errors"
	"testing"
)

func TestStore_AddGet(t *testing.T) {
	store := NewStore(setupTestDB(t))

	tr := &Transfer{ID: "t-1", AssetID: "1", URL: "https://fake.domain.com/video_01.mp4", FileName: "video_01.mp4", BytesExpected: -1}
	if err := store.Add(tr); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if tr.Status != StatusDownloading {
		t.Errorf("Status = %q, want downloading", tr.Status)
	}

	got, err := store.Get("t-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.AssetID != "1" || got.FileName != "video_01.mp4" {
		t.Errorf("unexpected transfer: %+v", got)
	}
	if got.FinishedAt != nil {
		t.Error("FinishedAt should be nil while downloading")
	}
	if got.BytesExpected != -1 {
		t.Errorf("BytesExpected = %d, want -1", got.BytesExpected)
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	store := NewStore(setupTestDB(t))

	_, err := store.Get("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Transition(t *testing.T) {
	store := NewStore(setupTestDB(t))

	tr := &Transfer{ID: "t-1", AssetID: "1", URL: "u", FileName: "f"}
	if err := store.Add(tr); err != nil {
		t.Fatalf("Add: %v", err)
	}

	tr.BytesWritten = 100
	tr.BytesExpected = 100
	if err := store.Transition(tr, StatusCompleted); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	got, err := store.Get("t-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("Status = %q, want completed", got.Status)
	}
	if got.BytesWritten != 100 {
		t.Errorf("BytesWritten = %d, want 100", got.BytesWritten)
	}
	if got.FinishedAt == nil {
		t.Error("FinishedAt should be set")
	}

	// Terminal
	err = store.Transition(tr, StatusFailed)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestStore_Transition_NotFound(t *testing.T) {
	store := NewStore(setupTestDB(t))

	tr := &Transfer{ID: "ghost", Status: StatusDownloading}
	err := store.Transition(tr, StatusFailed)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_List(t *testing.T) {
	store := NewStore(setupTestDB(t))

	for _, tr := range []*Transfer{
		{ID: "a", AssetID: "1", URL: "u1", FileName: "f1"},
		{ID: "b", AssetID: "2", URL: "u2", FileName: "f2"},
		{ID: "c", AssetID: "1", URL: "u1", FileName: "f1"},
	} {
		if err := store.Add(tr); err != nil {
			t.Fatalf("Add %s: %v", tr.ID, err)
		}
	}
	b, _ := store.Get("b")
	b.Error = "Server error 500"
	if err := store.Transition(b, StatusFailed); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	all, err := store.List(Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 transfers, got %d", len(all))
	}

	assetID := "1"
	forAsset, err := store.List(Filter{AssetID: &assetID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(forAsset) != 2 {
		t.Errorf("expected 2 transfers for asset 1, got %d", len(forAsset))
	}

	failed := StatusFailed
	failures, err := store.List(Filter{Status: &failed})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(failures) != 1 || failures[0].Error != "Server error 500" {
		t.Errorf("unexpected failures: %+v", failures)
	}

	limited, err := store.List(Filter{Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 transfers with limit, got %d", len(limited))
	}
}

func TestStore_Delete(t *testing.T) {
	store := NewStore(setupTestDB(t))

	if err := store.Add(&Transfer{ID: "a", AssetID: "1", URL: "u", FileName: "f"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete("a"); err != nil {
		t.Errorf("Delete should be idempotent, got %v", err)
	}
}
