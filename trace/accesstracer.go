package trace

import "github.com/sarchlab/cachesim/engine"

// AccessTableName is the table access records are written to.
const AccessTableName = "access_trace"

// An AccessRecord is one row of the access trace.
type AccessRecord struct {
	Seq        uint64
	Address    uint64
	Tag        uint64
	SetIndex   int
	Slot       int
	Hit        bool
	Evicted    bool
	EvictedTag uint64
}

// An AccessTracer turns engine outcomes into access records and feeds them to
// a DataRecorder.
type AccessTracer struct {
	recorder DataRecorder
	engine   *engine.Engine
}

// NewAccessTracer creates a tracer recording accesses of the given engine.
// It creates the trace table on the recorder.
func NewAccessTracer(
	recorder DataRecorder,
	e *engine.Engine,
) *AccessTracer {
	t := &AccessTracer{
		recorder: recorder,
		engine:   e,
	}

	recorder.CreateTable(AccessTableName, AccessRecord{})

	return t
}

// RecordAccess records one access. before is the state consumed by the
// access; out is what the engine returned for it.
func (t *AccessTracer) RecordAccess(
	req engine.Request,
	before engine.State,
	out engine.Outcome,
) {
	record := AccessRecord{
		Seq:      t.engine.Clock(),
		Address:  req.Address,
		Tag:      t.engine.Tag(req.Address),
		SetIndex: t.engine.SetIndex(req.Address),
		Slot:     out.AffectedSlot,
		Hit:      out.Hit,
	}

	prev := before[out.AffectedSlot]
	if !out.Hit && prev.Valid {
		record.Evicted = true
		record.EvictedTag = prev.Tag
	}

	t.recorder.InsertData(AccessTableName, record)
}
