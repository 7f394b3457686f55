package countstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/funvibe/rangetyck/internal/token"
	"github.com/google/uuid"
	"github.com/kr/pretty"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "counts.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	a := token.NewSpan("main.zp", 1, 1, 1, 4)
	b := token.NewSpan("main.zp", 2, 3, 2, 3)
	other := token.NewSpan("lib.zp", 1, 1, 1, 1)

	if err := s.Save(ctx, uuid.New(), map[token.Span]int{a: 2, b: 1, other: 7}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx, "main.zp")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := map[token.Span]int{a: 2, b: 1}
	if diff := pretty.Diff(got, want); len(diff) > 0 {
		t.Errorf("Load mismatch: %v", diff)
	}

	all, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	want = map[token.Span]int{a: 2, b: 1, other: 7}
	if diff := pretty.Diff(all, want); len(diff) > 0 {
		t.Errorf("LoadAll mismatch: %v", diff)
	}
}

func TestCountsNeverDecrease(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	a := token.NewSpan("main.zp", 1, 1, 1, 1)

	for _, n := range []int{3, 1, 5, 4} {
		if err := s.Save(ctx, uuid.New(), map[token.Span]int{a: n}); err != nil {
			t.Fatalf("Save(%d): %v", n, err)
		}
	}
	got, err := s.Load(ctx, "main.zp")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got[a] != 5 {
		t.Errorf("count = %d, want 5", got[a])
	}
}

func TestLoadEmpty(t *testing.T) {
	got, err := openTemp(t).Load(context.Background(), "none.zp")
	if err != nil || len(got) != 0 {
		t.Errorf("Load = %v, %v", got, err)
	}
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	first := Session{ID: uuid.New(), Problem: "p.yaml", StartedAt: time.Unix(100, 0).UTC(), Diagnostics: 2, Placeholders: 5}
	second := Session{ID: uuid.New(), Problem: "p.yaml", StartedAt: time.Unix(200, 0).UTC(), Placeholders: 1}
	for _, sess := range []Session{first, second} {
		if err := s.RecordSession(ctx, sess); err != nil {
			t.Fatalf("RecordSession: %v", err)
		}
	}
	if err := s.RecordSession(ctx, first); err == nil {
		t.Errorf("duplicate session id accepted")
	}

	got, err := s.Sessions(ctx, "p.yaml", 10)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	want := []Session{second, first}
	if len(got) != len(want) {
		t.Fatalf("got %d sessions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || !got[i].StartedAt.Equal(want[i].StartedAt) ||
			got[i].Diagnostics != want[i].Diagnostics || got[i].Placeholders != want[i].Placeholders {
			t.Errorf("session %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReopenKeepsCounts(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "counts.db")
	a := token.NewSpan("main.zp", 4, 2, 4, 9)

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Save(ctx, uuid.New(), map[token.Span]int{a: 3}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, _ := s.Load(ctx, "main.zp")
	if got[a] != 3 {
		t.Errorf("count after reopen = %d, want 3", got[a])
	}
}
