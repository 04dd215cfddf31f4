// Package numbering issues per-tenant, per-month contract numbers of the form YYYYMM####.
package numbering

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	prefixLayout = "200601"
	seqWidth     = 4
	maxSeq       = 9999
)

var (
	ErrSequenceExhausted = errors.New("contract number sequence exhausted for month")
	ErrMalformedNumber   = errors.New("malformed contract number")
)

// Source returns the highest stored number for a tenant starting with prefix,
// or an empty string when the month has none yet.
type Source interface {
	LatestContractNumber(ctx context.Context, tenantID uuid.UUID, prefix string) (string, error)
}

type Generator struct {
	source Source
}

func NewGenerator(source Source) *Generator {
	return &Generator{source: source}
}

// Next returns the number following the latest one stored for the tenant in
// the month of now. Uniqueness under concurrency is enforced by the store; a
// caller that loses the race asks again.
func (g *Generator) Next(ctx context.Context, tenantID uuid.UUID, now time.Time) (string, error) {
	prefix := Prefix(now)
	latest, err := g.source.LatestContractNumber(ctx, tenantID, prefix)
	if err != nil {
		return "", fmt.Errorf("load latest contract number: %w", err)
	}
	if latest == "" {
		return Format(now, 1), nil
	}

	seq, err := Sequence(latest)
	if err != nil {
		return "", err
	}
	if seq >= maxSeq {
		return "", fmt.Errorf("%w: %s", ErrSequenceExhausted, prefix)
	}
	return Format(now, seq+1), nil
}

func Prefix(t time.Time) string {
	return t.Format(prefixLayout)
}

func Format(t time.Time, seq int) string {
	return fmt.Sprintf("%s%0*d", Prefix(t), seqWidth, seq)
}

// Sequence extracts the trailing counter of a stored number.
func Sequence(number string) (int, error) {
	if len(number) != len(prefixLayout)+seqWidth {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumber, number)
	}
	seq, err := strconv.Atoi(number[len(prefixLayout):])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumber, number)
	}
	return seq, nil
}

// Display renders a stored number as YYYY/MM-SEQ. Anything that does not
// look like a stored number is returned unchanged.
func Display(number string) string {
	if _, err := Sequence(number); err != nil {
		return number
	}
	return number[:4] + "/" + number[4:6] + "-" + number[6:]
}
