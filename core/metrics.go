package core

import "context"

// NopMetricsRecorder discards every observation. It is the default
// recorder for engines and services built without WithMetricsRecorder,
// so instrumentation paths never need a nil check.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

// cloneTags guards recorders against callers mutating the tag map after
// the observation was handed off.
func cloneTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for key, value := range tags {
		out[key] = value
	}
	return out
}

var _ MetricsRecorder = NopMetricsRecorder{}
