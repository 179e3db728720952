package events

import (
	"strings"
	"sync"
)

// Severity levels recorded by the Recorder.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelFatal = "fatal"
)

// Entry is one recorded event.
type Entry struct {
	Level  string
	Msg    string
	Fields Fields
}

// Recorder captures events in memory. It is the sink used by tests to
// assert on diagnostics and metrics.
type Recorder struct {
	mu      sync.Mutex
	Entries []Entry
	Metrics []Metric
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(level, msg string, fields Fields) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, Entry{Level: level, Msg: msg, Fields: fields})
}

func (r *Recorder) Debug(msg string, fields Fields) { r.record(LevelDebug, msg, fields) }
func (r *Recorder) Info(msg string, fields Fields)  { r.record(LevelInfo, msg, fields) }
func (r *Recorder) Warn(msg string, fields Fields)  { r.record(LevelWarn, msg, fields) }
func (r *Recorder) Fatal(msg string, fields Fields) { r.record(LevelFatal, msg, fields) }

func (r *Recorder) Metric(m Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Metrics = append(r.Metrics, m)
}

// Has reports whether an event at the given level contains substr.
func (r *Recorder) Has(level, substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.Entries {
		if e.Level == level && strings.Contains(e.Msg, substr) {
			return true
		}
	}
	return false
}

// MetricCount returns how many metrics with the given name were emitted.
func (r *Recorder) MetricCount(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.Metrics {
		if m.Name == name {
			n++
		}
	}
	return n
}

// Reset clears recorded events and metrics.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = nil
	r.Metrics = nil
}
