package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/quietbay/innkeep/internal/domain"
)

// CodeScope is an independent numbering sequence. Reservations, stays and
// ledger entries each count from 1 within a month.
type CodeScope string

const (
	ScopeReservations CodeScope = "reservations"
	ScopeStays        CodeScope = "stays"
	ScopeLedger       CodeScope = "ledger"
)

// codeSource answers the "greatest existing code with prefix" query for one
// scope. All repositories satisfy it.
type codeSource interface {
	MaxCodeWithPrefix(ctx context.Context, prefix string) (string, error)
}

// CodeAllocator builds human-readable monthly sequence codes: a YYYYMM
// prefix followed by a counter that resets each month, zero-padded to three
// digits until it outgrows them.
type CodeAllocator struct {
	sources map[CodeScope]codeSource
}

// NewCodeAllocator creates an allocator over the three numbering scopes.
func NewCodeAllocator(reservations, stays, ledger codeSource) *CodeAllocator {
	return &CodeAllocator{
		sources: map[CodeScope]codeSource{
			ScopeReservations: reservations,
			ScopeStays:        stays,
			ScopeLedger:       ledger,
		},
	}
}

// Next computes the next code in scope for the month of referenceDate.
// Uniqueness is only guaranteed at insert time: two concurrent callers can
// compute the same code, which surfaces as domain.ErrCodeTaken on insert
// and is retried once by the caller.
func (a *CodeAllocator) Next(ctx context.Context, scope CodeScope, referenceDate time.Time) (string, error) {
	src, ok := a.sources[scope]
	if !ok {
		return "", fmt.Errorf("unknown code scope %q", scope)
	}

	prefix := referenceDate.Format("200601")

	max, err := src.MaxCodeWithPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("finding max code for prefix %s: %w", prefix, err)
	}

	seq := 1
	if max != "" {
		n, err := strconv.Atoi(max[len(prefix):])
		if err != nil {
			return "", fmt.Errorf("parsing code suffix of %q: %w", max, err)
		}
		seq = n + 1
	}

	if seq <= 999 {
		return fmt.Sprintf("%s%03d", prefix, seq), nil
	}
	return fmt.Sprintf("%s%d", prefix, seq), nil
}

// isCodeTaken reports whether an insert failed on code uniqueness, the one
// failure the services retry once with a fresh code.
func isCodeTaken(err error) bool {
	return errors.Is(err, domain.ErrCodeTaken)
}
