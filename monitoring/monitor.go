// Package monitoring turns a running cache simulation into a small web
// server, so that the cache state, the metrics, and the recorded trace can be
// observed and driven from outside the process.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/cachesim/analysis"
	"github.com/sarchlab/cachesim/engine"
	"github.com/sarchlab/cachesim/trace"
)

// portEnvVar can override the monitoring port when no port is set explicitly.
const portEnvVar = "CACHESIM_PORT"

// A Simulation is what the monitor observes and drives. All methods must be
// safe for concurrent use; the simulation serializes them internally.
type Simulation interface {
	ID() string
	Config() engine.Config
	StateSnapshot() engine.State
	Metrics() analysis.Summary
	AccessOnce() (engine.Outcome, error)
	Start()
	Pause()
	Reset()
	QueryTrace(ctx context.Context, params trace.QueryParams) (
		[]any, int, error)
}

// Monitor is the web server that exposes a simulation.
type Monitor struct {
	sim         Simulation
	portNumber  int
	openBrowser bool

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor. Ports below 1000 are
// rejected and replaced with a random port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is not allowed for the monitoring server. "+
				"Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the monitor in the default browser.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterSimulation registers the simulation to be monitored.
func (m *Monitor) RegisterSimulation(s Simulation) {
	m.sim = s
}

// StartServer starts the monitor as a web server.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	r.HandleFunc("/api/config", m.config)
	r.HandleFunc("/api/state", m.state)
	r.HandleFunc("/api/metrics", m.metrics)
	r.HandleFunc("/api/access", m.access)
	r.HandleFunc("/api/run", m.run)
	r.HandleFunc("/api/pause", m.pause)
	r.HandleFunc("/api/reset", m.reset)
	r.HandleFunc("/api/trace", m.queryTrace)
	r.HandleFunc("/api/inspect", m.inspect)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	http.Handle("/", r)

	listener, err := net.Listen("tcp", m.listenAddr())
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	if m.openBrowser {
		go func() {
			if err := browser.OpenURL(url); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to open browser: %s\n", err)
			}
		}()
	}

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()
}

func (m *Monitor) listenAddr() string {
	port := m.portNumber

	if port == 0 {
		if env := os.Getenv(portEnvVar); env != "" {
			p, err := strconv.Atoi(env)
			if err != nil || p < 1000 {
				fmt.Fprintf(os.Stderr,
					"Ignoring invalid %s value %q\n", portEnvVar, env)
			} else {
				port = p
			}
		}
	}

	if port == 0 {
		return ":0"
	}

	return ":" + strconv.Itoa(port)
}

type configRsp struct {
	ID        string `json:"id"`
	SlotCount int    `json:"slot_count"`
	Scheme    string `json:"mapping_scheme"`
	Policy    string `json:"eviction_policy"`
}

func (m *Monitor) config(w http.ResponseWriter, _ *http.Request) {
	c := m.sim.Config()

	writeJSON(w, configRsp{
		ID:        m.sim.ID(),
		SlotCount: c.SlotCount,
		Scheme:    c.Scheme.String(),
		Policy:    c.Policy.String(),
	})
}

type lineRsp struct {
	SlotIndex  int    `json:"slot_index"`
	Valid      bool   `json:"valid"`
	Tag        uint64 `json:"tag"`
	Payload    any    `json:"payload,omitempty"`
	LastUsed   uint64 `json:"last_used"`
	InsertedAt uint64 `json:"inserted_at"`
	Dirty      bool   `json:"dirty"`
}

func (m *Monitor) state(w http.ResponseWriter, _ *http.Request) {
	state := m.sim.StateSnapshot()

	lines := make([]lineRsp, len(state))
	for i, l := range state {
		lines[i] = lineRsp{
			SlotIndex:  l.SlotIndex,
			Valid:      l.Valid,
			Tag:        l.Tag,
			Payload:    l.Payload,
			LastUsed:   l.LastUsed,
			InsertedAt: l.InsertedAt,
			Dirty:      l.Dirty,
		}
	}

	writeJSON(w, lines)
}

func (m *Monitor) metrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.sim.Metrics())
}

type accessRsp struct {
	Hit          bool `json:"hit"`
	AffectedSlot int  `json:"affected_slot"`
}

func (m *Monitor) access(w http.ResponseWriter, _ *http.Request) {
	out, err := m.sim.AccessOnce()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	writeJSON(w, accessRsp{Hit: out.Hit, AffectedSlot: out.AffectedSlot})
}

func (m *Monitor) run(w http.ResponseWriter, _ *http.Request) {
	m.sim.Start()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) pause(w http.ResponseWriter, _ *http.Request) {
	m.sim.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) reset(w http.ResponseWriter, _ *http.Request) {
	m.sim.Reset()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) queryTrace(w http.ResponseWriter, r *http.Request) {
	params, err := traceParseParams(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	results, total, err := m.sim.QueryTrace(r.Context(), params)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	writeJSON(w, map[string]any{
		"total":   total,
		"records": results,
	})
}

func traceParseParams(r *http.Request) (trace.QueryParams, error) {
	params := trace.QueryParams{OrderBy: "Seq"}

	limitStr := r.URL.Query().Get("limit")
	if limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return params, err
		}
		params.Limit = limit
	}

	offsetStr := r.URL.Query().Get("offset")
	if offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return params, err
		}
		params.Offset = offset
	}

	return params, nil
}

func (m *Monitor) inspect(w http.ResponseWriter, _ *http.Request) {
	serializer := goseth.NewSerializer()
	serializer.SetRoot(m.sim)
	serializer.SetMaxDepth(1)

	err := serializer.Serialize(w)
	dieOnErr(err)
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        m.sim.ID() + "_" + name,
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the monitor.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	writeJSON(w, m.progressBars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memoryInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(data)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
