// Package termprobe defines the shared result model for the AI Terminal
// diagnostic tools. Each check produces one TestResult; a Recorder collects
// them in execution order and reports each to the console as it lands.
package termprobe

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// TestResult records the outcome of a single check.
type TestResult struct {
	// Name identifies the check (e.g. "Ollama Connection").
	Name string `toml:"test"`
	// Passed is true when the check's success predicate held.
	Passed bool `toml:"passed"`
	// Details elaborates on the outcome: model counts, durations, response
	// previews, or the status code / error text that failed the check.
	Details string `toml:"details,omitempty"`
	// Timestamp is when the result was recorded.
	Timestamp time.Time `toml:"timestamp"`
}

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Recorder accumulates results for one run and prints each as it is logged.
// The sequence is append-only and ordered by execution; a result is never
// mutated after Log returns.
type Recorder struct {
	mu      sync.Mutex
	out     io.Writer
	results []TestResult
}

// NewRecorder creates a recorder that reports to out.
func NewRecorder(out io.Writer) *Recorder {
	return &Recorder{out: out}
}

// Log appends a result and prints its pass/fail line.
func (r *Recorder) Log(name string, passed bool, details string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.results = append(r.results, TestResult{
		Name:      name,
		Passed:    passed,
		Details:   details,
		Timestamp: time.Now(),
	})

	status := passStyle.Render("✅ PASS")
	if !passed {
		status = failStyle.Render("❌ FAIL")
	}
	fmt.Fprintf(r.out, "%s: %s\n", status, name)
	if details != "" {
		fmt.Fprintf(r.out, "%s\n", detailStyle.Render("  Details: "+details))
	}
}

// Results returns a copy of the result sequence in execution order.
func (r *Recorder) Results() []TestResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TestResult, len(r.results))
	copy(out, r.results)
	return out
}

// PassCount returns the number of passed results.
func (r *Recorder) PassCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, res := range r.results {
		if res.Passed {
			n++
		}
	}
	return n
}

// Total returns the number of results logged so far.
func (r *Recorder) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

// FailedNames returns the names of failed results, in execution order.
func (r *Recorder) FailedNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, res := range r.results {
		if !res.Passed {
			names = append(names, res.Name)
		}
	}
	return names
}
