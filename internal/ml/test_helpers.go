package ml

import "sync"

// MockMetrics implements MetricsInterface for testing
type MockMetrics struct {
	mu              sync.Mutex
	predictions     int
	failures        int
	invalidRequests int
	latencyCount    int
	latencySum      float64
	classCounts     map[int]int
	modelLoadedAt   float64
}

func (m *MockMetrics) MLPredictionsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions++
}

func (m *MockMetrics) MLFailuresInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func (m *MockMetrics) MLInvalidRequestsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidRequests++
}

func (m *MockMetrics) MLLatencyObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencyCount++
	m.latencySum += v
}

func (m *MockMetrics) MLPredictedClassInc(label int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.classCounts == nil {
		m.classCounts = make(map[int]int)
	}
	m.classCounts[label]++
}

func (m *MockMetrics) MLModelLoadedSet(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelLoadedAt = v
}

// Snapshot returns the counters under the lock.
func (m *MockMetrics) Snapshot() (predictions, failures, invalid int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.predictions, m.failures, m.invalidRequests
}
