package probe

import (
	"io"

	"github.com/BurntSushi/toml"

	termprobe "github.com/ai-terminal/termprobe"
)

type transcript struct {
	Results []termprobe.TestResult `toml:"results"`
}

// WriteTranscript writes the run's result sequence as a TOML document,
// one [[results]] table per check in execution order.
func WriteTranscript(w io.Writer, results []termprobe.TestResult) error {
	return toml.NewEncoder(w).Encode(transcript{Results: results})
}
