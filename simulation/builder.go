package simulation

import (
	"strconv"
	"time"

	"github.com/rs/xid"

	"github.com/sarchlab/cachesim/analysis"
	"github.com/sarchlab/cachesim/engine"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/readings"
	"github.com/sarchlab/cachesim/trace"
)

// DefaultInterval is the cadence of the interval driver.
const DefaultInterval = time.Second

// Builder can be used to build a simulation.
type Builder struct {
	slotCount int
	scheme    engine.MappingScheme
	policy    engine.EvictionPolicy

	seed       int64
	maxAddress uint64
	windowSize int
	interval   time.Duration

	monitorOn      bool
	monitorPort    int
	openBrowser    bool
	outputFileName string
}

// MakeBuilder creates a new builder with monitoring on, a 4-slot
// direct-mapped LRU cache, and the default address range.
func MakeBuilder() Builder {
	return Builder{
		slotCount:  4,
		scheme:     engine.MappingDirect,
		policy:     engine.EvictLRU,
		maxAddress: readings.DefaultMaxAddress,
		windowSize: analysis.DefaultWindowSize,
		interval:   DefaultInterval,
		monitorOn:  true,
	}
}

// WithSlotCount sets the number of cache slots.
func (b Builder) WithSlotCount(n int) Builder {
	b.slotCount = n
	return b
}

// WithMappingScheme sets the mapping scheme.
func (b Builder) WithMappingScheme(s engine.MappingScheme) Builder {
	b.scheme = s
	return b
}

// WithEvictionPolicy sets the eviction policy.
func (b Builder) WithEvictionPolicy(p engine.EvictionPolicy) Builder {
	b.policy = p
	return b
}

// WithSeed sets the seed of the access generator.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithMaxAddress sets the exclusive upper bound of generated addresses.
func (b Builder) WithMaxAddress(max uint64) Builder {
	b.maxAddress = max
	return b
}

// WithMetricsWindow sets the rolling window of the metrics analyzer.
func (b Builder) WithMetricsWindow(n int) Builder {
	b.windowSize = n
	return b
}

// WithInterval sets the cadence of the interval driver.
func (b Builder) WithInterval(d time.Duration) Builder {
	b.interval = d
	return b
}

// WithoutMonitoring disables the monitoring server.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number of the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowser opens the monitor in the default browser once it serves.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

// WithOutputFileName sets the trace file name, without the .sqlite3 suffix.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.monitorOn && b.openBrowser {
		panic("browser cannot be opened when monitoring is disabled")
	}
}

// Build builds the simulation. It fails with the engine's
// ErrInvalidConfig-wrapped error when the cache shape is invalid.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	e, err := engine.MakeBuilder().
		WithSlotCount(b.slotCount).
		WithMappingScheme(b.scheme).
		WithEvictionPolicy(b.policy).
		Build()
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		id:       xid.New().String(),
		engine:   e,
		interval: b.interval,
		state:    engine.NewEmptyState(b.slotCount),
	}

	s.generator = readings.MakeBuilder().
		WithSeed(b.seed).
		WithMaxAddress(b.maxAddress).
		Build()

	s.analyzer = analysis.MakeBuilder().
		WithWindowSize(b.windowSize).
		Build()

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "cachesim_" + s.id
	}
	s.traceFile = outputPath + ".sqlite3"
	s.recorder = trace.NewDataRecorder(outputPath)
	s.tracer = trace.NewAccessTracer(s.recorder, e)

	s.runRecorder = trace.NewRunRecorder(s.recorder)
	s.runRecorder.Start(map[string]string{
		"Run ID":          s.id,
		"Slot Count":      strconv.Itoa(b.slotCount),
		"Mapping Scheme":  b.scheme.String(),
		"Eviction Policy": b.policy.String(),
		"Generator Seed":  strconv.FormatInt(b.seed, 10),
	})

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		if b.openBrowser {
			s.monitor.WithBrowser()
		}

		s.monitor.RegisterSimulation(s)
		s.monitor.StartServer()
	}

	return s, nil
}
