// Package simulation wires the cache engine, the access generator, the
// metrics, the trace recorder, and the monitor into one runnable simulation.
package simulation

import (
	"context"
	"sync"
	"time"

	"github.com/sarchlab/cachesim/analysis"
	"github.com/sarchlab/cachesim/engine"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/readings"
	"github.com/sarchlab/cachesim/trace"
)

// A Simulation owns the engine and the authoritative cache state, and funnels
// every mutation through one mutex. The engine's logical clock would be
// corrupted by interleaved accesses, so the monitor, the interval driver, and
// direct callers all go through the same serialized entry points.
type Simulation struct {
	id string

	engine      *engine.Engine
	generator   *readings.Generator
	analyzer    *analysis.AccessAnalyzer
	recorder    trace.DataRecorder
	tracer      *trace.AccessTracer
	runRecorder *trace.RunRecorder
	monitor     *monitoring.Monitor

	traceFile string
	interval  time.Duration

	mu            sync.Mutex
	state         engine.State
	driverRunning bool
	stop          chan struct{}
}

// ID returns the unique ID of this simulation run.
func (s *Simulation) ID() string {
	return s.id
}

// Config returns the engine configuration.
func (s *Simulation) Config() engine.Config {
	return s.engine.Config()
}

// Monitor returns the monitor, or nil when monitoring is disabled.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// StateSnapshot returns a copy of the current cache state.
func (s *Simulation) StateSnapshot() engine.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Clone()
}

// Metrics returns a snapshot of the derived metrics.
func (s *Simulation) Metrics() analysis.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.analyzer.Summary()
}

// AccessOnce draws the next request from the generator and performs one
// access, storing the returned state as the new authoritative one.
func (s *Simulation) AccessOnce() (engine.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.access(s.generator.Next())
}

// Access performs one access with a caller-supplied request.
func (s *Simulation) Access(req engine.Request) (engine.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.access(req)
}

// access must be called with the mutex held.
func (s *Simulation) access(req engine.Request) (engine.Outcome, error) {
	before := s.state

	out, err := s.engine.Access(req, before)
	if err != nil {
		return engine.Outcome{}, err
	}

	s.state = out.State
	s.analyzer.RecordAccess(out.Hit)
	s.tracer.RecordAccess(req, before, out)

	return out, nil
}

// RunAccesses performs n accesses back to back.
func (s *Simulation) RunAccesses(n int) error {
	var bar *monitoring.ProgressBar
	if s.monitor != nil {
		bar = s.monitor.CreateProgressBar("accesses", uint64(n))
		defer s.monitor.CompleteProgressBar(bar)
	}

	for i := 0; i < n; i++ {
		if _, err := s.AccessOnce(); err != nil {
			return err
		}

		if bar != nil {
			bar.IncrementFinished(1)
		}
	}

	return nil
}

// Start launches the interval driver, which performs one access per interval
// until Pause is called. It does nothing while the driver is running.
func (s *Simulation) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.driverRunning {
		return
	}

	s.driverRunning = true
	s.stop = make(chan struct{})

	go s.drive(s.stop)
}

// Pause stops the interval driver. Manual accesses remain possible.
func (s *Simulation) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.driverRunning {
		return
	}

	close(s.stop)
	s.driverRunning = false
}

func (s *Simulation) drive(stop chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// The state cannot desynchronize here: the simulation owns it.
			_, _ = s.AccessOnce()
		}
	}
}

// Reset discards the cache state and the metrics history. The engine and its
// logical clock survive; changing the configuration requires building a new
// simulation.
func (s *Simulation) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = engine.NewEmptyState(s.engine.Config().SlotCount)
	s.analyzer.Reset()
}

// QueryTrace flushes buffered records and reads the access trace back.
func (s *Simulation) QueryTrace(
	ctx context.Context,
	params trace.QueryParams,
) ([]any, int, error) {
	s.mu.Lock()
	s.recorder.Flush()
	s.mu.Unlock()

	reader := trace.NewDataReader(s.traceFile)
	defer reader.Close()

	reader.MapTable(trace.AccessTableName, trace.AccessRecord{})

	return reader.Query(ctx, trace.AccessTableName, params)
}

// Terminate stops the driver, writes the run metadata, and closes the trace.
func (s *Simulation) Terminate() {
	s.Pause()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.runRecorder.End()
	s.recorder.Close()
}
