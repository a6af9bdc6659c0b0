package ports

import "time"

// PipelineObserver receives per-question measurements.
type PipelineObserver interface {
	ObserveReply(kind string, duration time.Duration)
	ObserveRelevance(score float64, relevant bool)
	ObserveGeneration(generator string, duration time.Duration, err error)
}

// NopObserver discards every observation.
type NopObserver struct{}

func (NopObserver) ObserveReply(string, time.Duration) {}
func (NopObserver) ObserveRelevance(float64, bool) {}
func (NopObserver) ObserveGeneration(string, time.Duration, error) {}
