package metrics

import "testing"

func TestNewRegistersAllCollectors(t *testing.T) {
	m := New()
	if m.SearchQueriesTotal == nil || m.SearchLatency == nil || m.BuildPassDuration == nil {
		t.Fatal("expected all collectors to be constructed")
	}
	// Exercising each collector once confirms it was registered to a valid
	// metric descriptor rather than panicking at observation time.
	m.SearchQueriesTotal.WithLabelValues("hit").Inc()
	m.SearchLatency.Observe(0.01)
	m.SearchResultsCount.Observe(5)
	m.Stage1CandidateCount.Observe(100)
	m.Stage2CandidateCount.Observe(50)
	m.BuildPassDuration.WithLabelValues("combined").Observe(1.5)
	m.BuildsTotal.WithLabelValues("ok").Inc()
	m.DocsIndexedTotal.Inc()
	m.DocumentCount.Set(10)
	m.TermCount.Set(200)
}
