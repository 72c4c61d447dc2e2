package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quietbay/innkeep/internal/domain"
)

const tracerName = "github.com/quietbay/innkeep/internal/adapter/otel"

// TracingStayRepository wraps a domain.StayRepository with OpenTelemetry
// tracing. Each method creates a span with semantic attributes and records
// errors.
type TracingStayRepository struct {
	next   domain.StayRepository
	tracer trace.Tracer
}

// Compile-time check: TracingStayRepository implements domain.StayRepository.
var _ domain.StayRepository = (*TracingStayRepository)(nil)

// NewTracingStayRepository creates a tracing decorator around the given repository.
func NewTracingStayRepository(next domain.StayRepository) *TracingStayRepository {
	return &TracingStayRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingStayRepository) Create(ctx context.Context, stay domain.Stay) error {
	ctx, span := r.tracer.Start(ctx, "StayRepository.Create",
		trace.WithAttributes(
			attribute.String("stay.id", stay.ID),
			attribute.String("stay.code", stay.Code),
			attribute.String("room.id", stay.RoomID),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, stay)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingStayRepository) GetByID(ctx context.Context, id string) (domain.Stay, error) {
	ctx, span := r.tracer.Start(ctx, "StayRepository.GetByID",
		trace.WithAttributes(attribute.String("stay.id", id)),
	)
	defer span.End()

	stay, err := r.next.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return stay, err
}

func (r *TracingStayRepository) List(ctx context.Context, filter domain.StayFilter) ([]domain.Stay, error) {
	ctx, span := r.tracer.Start(ctx, "StayRepository.List",
		trace.WithAttributes(
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
		),
	)
	defer span.End()

	if filter.RoomID != "" {
		span.SetAttributes(attribute.String("filter.room_id", filter.RoomID))
	}

	stays, err := r.next.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("result.count", len(stays)))
	}
	return stays, err
}

func (r *TracingStayRepository) Update(ctx context.Context, stay domain.Stay) error {
	ctx, span := r.tracer.Start(ctx, "StayRepository.Update",
		trace.WithAttributes(
			attribute.String("stay.id", stay.ID),
			attribute.String("stay.code", stay.Code),
		),
	)
	defer span.End()

	err := r.next.Update(ctx, stay)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingStayRepository) Delete(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "StayRepository.Delete",
		trace.WithAttributes(attribute.String("stay.id", id)),
	)
	defer span.End()

	err := r.next.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingStayRepository) MaxCodeWithPrefix(ctx context.Context, prefix string) (string, error) {
	ctx, span := r.tracer.Start(ctx, "StayRepository.MaxCodeWithPrefix",
		trace.WithAttributes(attribute.String("code.prefix", prefix)),
	)
	defer span.End()

	code, err := r.next.MaxCodeWithPrefix(ctx, prefix)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return code, err
}

func (r *TracingStayRepository) FindOverlapping(ctx context.Context, roomID string, entry, exit, today time.Time, excludeID string) ([]domain.Stay, error) {
	ctx, span := r.tracer.Start(ctx, "StayRepository.FindOverlapping",
		trace.WithAttributes(
			attribute.String("room.id", roomID),
			attribute.String("interval.entry", entry.Format("2006-01-02")),
			attribute.String("interval.exit", exit.Format("2006-01-02")),
		),
	)
	defer span.End()

	stays, err := r.next.FindOverlapping(ctx, roomID, entry, exit, today, excludeID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("result.count", len(stays)))
	}
	return stays, err
}

func (r *TracingStayRepository) LatestForRoom(ctx context.Context, roomID string) (domain.Stay, error) {
	ctx, span := r.tracer.Start(ctx, "StayRepository.LatestForRoom",
		trace.WithAttributes(attribute.String("room.id", roomID)),
	)
	defer span.End()

	stay, err := r.next.LatestForRoom(ctx, roomID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return stay, err
}

func (r *TracingStayRepository) ListByCheckoutDate(ctx context.Context, day time.Time) ([]domain.Stay, error) {
	ctx, span := r.tracer.Start(ctx, "StayRepository.ListByCheckoutDate",
		trace.WithAttributes(attribute.String("checkout.date", day.Format("2006-01-02"))),
	)
	defer span.End()

	stays, err := r.next.ListByCheckoutDate(ctx, day)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("result.count", len(stays)))
	}
	return stays, err
}

// TracingLedgerRepository wraps a domain.LedgerRepository with OpenTelemetry
// tracing.
type TracingLedgerRepository struct {
	next   domain.LedgerRepository
	tracer trace.Tracer
}

// Compile-time check: TracingLedgerRepository implements domain.LedgerRepository.
var _ domain.LedgerRepository = (*TracingLedgerRepository)(nil)

// NewTracingLedgerRepository creates a tracing decorator around the given repository.
func NewTracingLedgerRepository(next domain.LedgerRepository) *TracingLedgerRepository {
	return &TracingLedgerRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingLedgerRepository) Create(ctx context.Context, entry domain.LedgerEntry) error {
	ctx, span := r.tracer.Start(ctx, "LedgerRepository.Create",
		trace.WithAttributes(
			attribute.String("entry.id", entry.ID),
			attribute.String("entry.kind", string(entry.Kind)),
			attribute.String("entry.origin", string(entry.Origin)),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, entry)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingLedgerRepository) GetByID(ctx context.Context, id string) (domain.LedgerEntry, error) {
	ctx, span := r.tracer.Start(ctx, "LedgerRepository.GetByID",
		trace.WithAttributes(attribute.String("entry.id", id)),
	)
	defer span.End()

	entry, err := r.next.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return entry, err
}

func (r *TracingLedgerRepository) List(ctx context.Context, filter domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	ctx, span := r.tracer.Start(ctx, "LedgerRepository.List",
		trace.WithAttributes(
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
		),
	)
	defer span.End()

	entries, err := r.next.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("result.count", len(entries)))
	}
	return entries, err
}

func (r *TracingLedgerRepository) Update(ctx context.Context, entry domain.LedgerEntry) error {
	ctx, span := r.tracer.Start(ctx, "LedgerRepository.Update",
		trace.WithAttributes(attribute.String("entry.id", entry.ID)),
	)
	defer span.End()

	err := r.next.Update(ctx, entry)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingLedgerRepository) MaxCodeWithPrefix(ctx context.Context, prefix string) (string, error) {
	ctx, span := r.tracer.Start(ctx, "LedgerRepository.MaxCodeWithPrefix",
		trace.WithAttributes(attribute.String("code.prefix", prefix)),
	)
	defer span.End()

	code, err := r.next.MaxCodeWithPrefix(ctx, prefix)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return code, err
}

func (r *TracingLedgerRepository) ActiveByReference(ctx context.Context, origin domain.LedgerOrigin, referenceID string) ([]domain.LedgerEntry, error) {
	ctx, span := r.tracer.Start(ctx, "LedgerRepository.ActiveByReference",
		trace.WithAttributes(
			attribute.String("entry.origin", string(origin)),
			attribute.String("entry.reference_id", referenceID),
		),
	)
	defer span.End()

	entries, err := r.next.ActiveByReference(ctx, origin, referenceID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("result.count", len(entries)))
	}
	return entries, err
}

func (r *TracingLedgerRepository) Balance(ctx context.Context) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "LedgerRepository.Balance")
	defer span.End()

	balance, err := r.next.Balance(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return balance, err
}
