// Package readings generates the synthetic access stream that drives the
// cache simulation: pseudo-random addresses carrying mock sensor readings as
// payloads.
package readings

import (
	"math/rand"

	"github.com/rs/xid"

	"github.com/sarchlab/cachesim/engine"
)

// DefaultMaxAddress bounds generated addresses to [0, 256).
const DefaultMaxAddress = 256

var sensorNames = []string{
	"temperature",
	"humidity",
	"pressure",
	"luminance",
}

// A Reading is the opaque payload stored in the cache on a fill.
type Reading struct {
	ID     string  `json:"id"`
	Sensor string  `json:"sensor"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
}

// A Generator produces access requests. The address stream is fully
// determined by the seed; reading IDs are not, but the engine never looks at
// payloads.
type Generator struct {
	rng        *rand.Rand
	maxAddress uint64
}

// Next returns the next access request.
func (g *Generator) Next() engine.Request {
	addr := uint64(g.rng.Int63n(int64(g.maxAddress)))

	sensor := sensorNames[g.rng.Intn(len(sensorNames))]
	reading := Reading{
		ID:     xid.New().String(),
		Sensor: sensor,
		Value:  g.rng.Float64() * 100,
		Unit:   unitFor(sensor),
	}

	return engine.Request{Address: addr, Payload: reading}
}

// MaxAddress returns the exclusive upper bound of generated addresses.
func (g *Generator) MaxAddress() uint64 {
	return g.maxAddress
}

func unitFor(sensor string) string {
	switch sensor {
	case "temperature":
		return "C"
	case "humidity":
		return "%"
	case "pressure":
		return "hPa"
	default:
		return "lx"
	}
}

// Builder can be used to build a generator.
type Builder struct {
	seed       int64
	maxAddress uint64
}

// MakeBuilder creates a builder with the default address range and seed 0.
func MakeBuilder() Builder {
	return Builder{maxAddress: DefaultMaxAddress}
}

// WithSeed sets the seed of the address stream.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithMaxAddress sets the exclusive upper bound of generated addresses.
func (b Builder) WithMaxAddress(max uint64) Builder {
	b.maxAddress = max
	return b
}

// Build builds the generator.
func (b Builder) Build() *Generator {
	if b.maxAddress == 0 {
		panic("max address must be positive")
	}

	return &Generator{
		rng:        rand.New(rand.NewSource(b.seed)),
		maxAddress: b.maxAddress,
	}
}
