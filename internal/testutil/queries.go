package testutil

import (
	"strings"
	"sync"

	"github.com/roach88/modelkit/internal/session"
)

// QueryRecorder collects the statements a Registry executes.
//
// Tests use it to assert how many round trips an operation made, for
// example that a cached validation result issues no second count query.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type QueryRecorder struct {
	mu      sync.Mutex
	queries []string
}

// NewQueryRecorder creates an empty recorder.
func NewQueryRecorder() *QueryRecorder {
	return &QueryRecorder{}
}

// Logger returns a session.QueryLogger that appends to the recorder.
func (r *QueryRecorder) Logger() session.QueryLogger {
	return func(query string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.queries = append(r.queries, query)
	}
}

// Queries returns a copy of the recorded statements, oldest first.
func (r *QueryRecorder) Queries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

// Len returns the number of recorded statements.
func (r *QueryRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queries)
}

// Matching counts recorded statements starting with prefix, ignoring case.
func (r *QueryRecorder) Matching(prefix string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, q := range r.queries {
		if strings.HasPrefix(strings.ToLower(q), strings.ToLower(prefix)) {
			n++
		}
	}
	return n
}

// Reset forgets every recorded statement.
func (r *QueryRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = nil
}
