package numbering

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeSource struct {
	numbers map[uuid.UUID][]string
	err     error
}

func (f *fakeSource) LatestContractNumber(_ context.Context, tenantID uuid.UUID, prefix string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	latest := ""
	for _, n := range f.numbers[tenantID] {
		if strings.HasPrefix(n, prefix) && n > latest {
			latest = n
		}
	}
	return latest, nil
}

func TestGeneratorNext(t *testing.T) {
	tenant := uuid.New()
	other := uuid.New()
	jan := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	src := &fakeSource{numbers: map[uuid.UUID][]string{
		tenant: {"2024010001", "2024010007", "2023120042"},
		other:  {"2024010099"},
	}}
	g := NewGenerator(src)

	t.Run("increments within month", func(t *testing.T) {
		got, err := g.Next(context.Background(), tenant, jan)
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if got != "2024010008" {
			t.Fatalf("Next() = %s, want 2024010008", got)
		}
	})

	t.Run("resets when month changes", func(t *testing.T) {
		got, err := g.Next(context.Background(), tenant, feb)
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if got != "2024020001" {
			t.Fatalf("Next() = %s, want 2024020001", got)
		}
	})

	t.Run("scoped per tenant", func(t *testing.T) {
		got, err := g.Next(context.Background(), uuid.New(), jan)
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if got != "2024010001" {
			t.Fatalf("Next() = %s, want 2024010001", got)
		}
	})
}

func TestGeneratorNextErrors(t *testing.T) {
	tenant := uuid.New()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("source failure", func(t *testing.T) {
		boom := errors.New("db down")
		_, err := NewGenerator(&fakeSource{err: boom}).Next(context.Background(), tenant, now)
		if !errors.Is(err, boom) {
			t.Fatalf("expected wrapped source error, got %v", err)
		}
	})

	t.Run("exhausted", func(t *testing.T) {
		src := &fakeSource{numbers: map[uuid.UUID][]string{tenant: {"2024039999"}}}
		_, err := NewGenerator(src).Next(context.Background(), tenant, now)
		if !errors.Is(err, ErrSequenceExhausted) {
			t.Fatalf("expected ErrSequenceExhausted, got %v", err)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		src := &fakeSource{numbers: map[uuid.UUID][]string{tenant: {"202403ABCD"}}}
		_, err := NewGenerator(src).Next(context.Background(), tenant, now)
		if !errors.Is(err, ErrMalformedNumber) {
			t.Fatalf("expected ErrMalformedNumber, got %v", err)
		}
	})
}

func TestDisplay(t *testing.T) {
	if got := Display("2024010042"); got != "2024/01-0042" {
		t.Fatalf("Display() = %s", got)
	}
	if got := Display("legacy-7"); got != "legacy-7" {
		t.Fatalf("Display() should pass through, got %s", got)
	}
}
