package uow

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"registrar/internal/core/id"
)

var tracer = otel.Tracer("registrar/uow")

// Clock returns the current instant.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// Pipeline is the ordered list of stages run before every store call.
// Soft-delete conversion must precede audit stamping so that a converted
// delete is stamped as a modification.
type Pipeline struct {
	stages []Stage
	clock  Clock
}

// NewPipeline creates a pipeline that runs stages in the given order.
func NewPipeline(clock Clock, stages ...Stage) *Pipeline {
	if clock == nil {
		clock = SystemClock
	}
	return &Pipeline{stages: stages, clock: clock}
}

// DefaultPipeline returns {soft delete, audit} on the system clock.
func DefaultPipeline() *Pipeline {
	return NewPipeline(SystemClock, SoftDeleteStage{}, AuditStage{})
}

// WithClock returns a copy of p using clock.
func (p *Pipeline) WithClock(clock Clock) *Pipeline {
	return NewPipeline(clock, p.stages...)
}

// StageNames lists the stages in execution order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Run applies every stage to cs with one shared stamp and returns it.
func (p *Pipeline) Run(ctx context.Context, cs *ChangeSet, actor id.ID) Stamp {
	_, span := tracer.Start(ctx, "uow.pipeline",
		trace.WithAttributes(attribute.Int("uow.entries", cs.Len())))
	defer span.End()

	stamp := Stamp{Actor: actor, Now: p.clock().UTC()}
	for _, s := range p.stages {
		s.Apply(cs, stamp)
	}
	return stamp
}
