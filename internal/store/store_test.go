package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenEnablesWAL(t *testing.T) {
	s := newTestStore(t)

	var mode string
	if err := s.db.Get(&mode, "PRAGMA journal_mode"); err != nil {
		t.Fatal(err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Fatalf("journal_mode = %q, want wal", mode)
	}
}

func TestUpsertAndGetProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := &Profile{UserID: "u1", Theme: "계곡", Experience: "초급", Region: "서울"}
	if err := s.UpsertProfile(ctx, p); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if *got != *p {
		t.Fatalf("got %+v, want %+v", got, p)
	}
}

func TestUpsertOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &Profile{UserID: "u1", Theme: "계곡", Experience: "초급", Region: "서울"}
	second := &Profile{UserID: "u1", Theme: "단풍", Experience: "고급", Region: "강원"}
	if err := s.UpsertProfile(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertProfile(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if *got != *second {
		t.Fatalf("got %+v, want last write %+v", got, second)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetProfile(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestHasProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	has, err := s.HasProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Fatal("HasProfile should be false before upsert")
	}

	if err := s.UpsertProfile(ctx, &Profile{UserID: "u1", Theme: "숲", Experience: "중급", Region: "경기"}); err != nil {
		t.Fatal(err)
	}

	has, err = s.HasProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !has {
		t.Fatal("HasProfile should be true after upsert")
	}
}
