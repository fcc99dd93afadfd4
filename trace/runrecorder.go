package trace

import (
	"os"
	"strings"
	"time"
)

// RunInfoTableName is the table run metadata is written to.
const RunInfoTableName = "run_info"

type runInfo struct {
	Property string
	Value    string
}

// A RunRecorder stores metadata about one simulation run alongside its
// access trace.
type RunRecorder struct {
	recorder DataRecorder
	entries  []runInfo
}

// NewRunRecorder creates a RunRecorder on the given DataRecorder and creates
// its table.
func NewRunRecorder(recorder DataRecorder) *RunRecorder {
	r := &RunRecorder{recorder: recorder}

	recorder.CreateTable(RunInfoTableName, runInfo{})

	return r
}

// Start captures the run environment. The entries are held back until End so
// that a run is recorded as a whole.
func (r *RunRecorder) Start(properties map[string]string) {
	start := time.Now().Format("2006-01-02 15:04:05.000000000")
	r.entries = append(r.entries, runInfo{"Start Time", start})

	cmd := strings.Join(os.Args, " ")
	r.entries = append(r.entries, runInfo{"Command", cmd})

	for property, value := range properties {
		r.entries = append(r.entries, runInfo{property, value})
	}
}

// End writes all run metadata, including the end time, and flushes.
func (r *RunRecorder) End() {
	for _, entry := range r.entries {
		r.recorder.InsertData(RunInfoTableName, entry)
	}
	r.entries = nil

	end := time.Now().Format("2006-01-02 15:04:05.000000000")
	r.recorder.InsertData(RunInfoTableName, runInfo{"End Time", end})

	r.recorder.Flush()
}
