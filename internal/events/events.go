// Package events defines the event and metric sink used by the generation
// pipeline. Components never log directly; they emit through an injected
// Emitter so the transport (console, structured log, test recorder) stays
// out of the pipeline code.
package events

// Fields carries structured context attached to an event.
type Fields map[string]any

// Metric is a structured metric emission.
type Metric struct {
	// Kind is the metric type, e.g. "count" or "gauge".
	Kind string

	// Name identifies the metric series.
	Name string

	// Text is an optional human-readable annotation.
	Text string

	// Tags always include the application id, plus the resource and
	// feature names where applicable.
	Tags map[string]string
}

// Emitter is the write-only sink for pipeline events.
type Emitter interface {
	Debug(msg string, fields Fields)
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	Fatal(msg string, fields Fields)
	Metric(m Metric)
}

// Multi fans events out to several sinks in order.
type Multi []Emitter

func (m Multi) Debug(msg string, fields Fields) {
	for _, e := range m {
		e.Debug(msg, fields)
	}
}

func (m Multi) Info(msg string, fields Fields) {
	for _, e := range m {
		e.Info(msg, fields)
	}
}

func (m Multi) Warn(msg string, fields Fields) {
	for _, e := range m {
		e.Warn(msg, fields)
	}
}

func (m Multi) Fatal(msg string, fields Fields) {
	for _, e := range m {
		e.Fatal(msg, fields)
	}
}

func (m Multi) Metric(metric Metric) {
	for _, e := range m {
		e.Metric(metric)
	}
}
