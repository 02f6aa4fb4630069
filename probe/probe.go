// Package probe runs the chat smoke-test battery against a generation
// server: connection, model availability, blocking and streaming generation,
// and multi-turn context continuity.
package probe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	termprobe "github.com/ai-terminal/termprobe"
	"github.com/ai-terminal/termprobe/ollama"
)

// Check names as they appear in results and the summary.
const (
	CheckConnection   = "Ollama Connection"
	CheckAvailability = "Model Availability"
	CheckSimple       = "Simple Generation"
	CheckStreaming    = "Streaming Generation"
	CheckContext      = "Conversation Context"
)

const (
	simplePrompt       = "Say 'Hello, AI Terminal!' and nothing else."
	streamingPrompt    = "Count from 1 to 5."
	contextFirstPrompt = "My name is TestBot. What is my name?"
	contextProbePrompt = "What did I just tell you my name was?"
	contextExpected    = "testbot"
)

const historySize = 10

// Probe runs the check battery. Each check logs exactly one result and
// swallows its own errors; only the initial connection check can stop a run.
type Probe struct {
	client      *ollama.Client
	rec         *termprobe.Recorder
	out         io.Writer
	model       string // empty: use first listed model
	temperature float64
	numPredict  int
	pause       time.Duration
	history     *ollama.History
}

// New creates a probe reporting through rec, with banners written to out.
// model overrides the run's model selection when non-empty.
func New(client *ollama.Client, rec *termprobe.Recorder, out io.Writer, cfg *termprobe.Config, model string) *Probe {
	return &Probe{
		client:      client,
		rec:         rec,
		out:         out,
		model:       model,
		temperature: cfg.Probe.Temperature,
		numPredict:  cfg.Probe.NumPredict,
		pause:       cfg.Pause(),
		history:     ollama.NewHistory(historySize),
	}
}

func (p *Probe) options() ollama.Options {
	return ollama.Options{Temperature: p.temperature, NumPredict: p.numPredict}
}

// ConnectionCheck verifies the server is reachable and lists its models.
func (p *Probe) ConnectionCheck(ctx context.Context) bool {
	models, err := p.client.ListModels(ctx)
	if err != nil {
		p.rec.Log(CheckConnection, false, err.Error())
		return false
	}

	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	p.rec.Log(CheckConnection, true,
		fmt.Sprintf("Found %d models: %s", len(models), strings.Join(names, ", ")))
	return true
}

// ModelAvailability verifies the named model appears in the listing.
func (p *Probe) ModelAvailability(ctx context.Context, model string) bool {
	models, err := p.client.ListModels(ctx)
	if err != nil {
		p.rec.Log(CheckAvailability, false, err.Error())
		return false
	}

	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	for _, name := range names {
		if name == model {
			p.rec.Log(CheckAvailability, true, fmt.Sprintf("Model '%s' is available", model))
			return true
		}
	}
	p.rec.Log(CheckAvailability, false,
		fmt.Sprintf("Model '%s' not found. Available: %s", model, strings.Join(names, ", ")))
	return false
}

// SimpleGeneration runs one blocking generation with a fixed prompt.
func (p *Probe) SimpleGeneration(ctx context.Context, model string) bool {
	start := time.Now()
	resp, err := p.client.Generate(ctx, ollama.GenerateRequest{
		Model:   model,
		Prompt:  simplePrompt,
		Options: p.options(),
	})
	if err != nil {
		p.rec.Log(CheckSimple, false, err.Error())
		return false
	}

	p.rec.Log(CheckSimple, true,
		fmt.Sprintf("Generated in %.2fs: '%s...'", time.Since(start).Seconds(), prefix(resp.Response, 50)))
	return true
}

// StreamingGeneration runs one streaming generation and counts the token
// fragments. Fragments without a response field contribute nothing.
func (p *Probe) StreamingGeneration(ctx context.Context, model string) bool {
	var tokens []string
	start := time.Now()

	err := p.client.GenerateStream(ctx, ollama.GenerateRequest{
		Model:   model,
		Prompt:  streamingPrompt,
		Options: p.options(),
	}, func(chunk ollama.StreamChunk) {
		if chunk.Response != nil {
			tokens = append(tokens, *chunk.Response)
		}
	})
	if err != nil {
		p.rec.Log(CheckStreaming, false, err.Error())
		return false
	}

	slog.Debug("streamed response", "text", strings.Join(tokens, ""))
	p.rec.Log(CheckStreaming, true,
		fmt.Sprintf("Received %d tokens in %.2fs", len(tokens), time.Since(start).Seconds()))
	return true
}

// ConversationContext sends a prompt stating a name, then asks for it back
// with the returned context token attached.
func (p *Probe) ConversationContext(ctx context.Context, model string) bool {
	p.history.Clear()
	p.history.Add("user", contextFirstPrompt, nil)

	first, err := p.client.Generate(ctx, ollama.GenerateRequest{
		Model:   model,
		Prompt:  contextFirstPrompt,
		Options: p.options(),
	})
	if err != nil {
		p.rec.Log(CheckContext, false, "First message failed: "+err.Error())
		return false
	}
	p.history.Add("assistant", first.Response, first.Context)

	p.history.Add("user", contextProbePrompt, nil)
	second, err := p.client.Generate(ctx, ollama.GenerateRequest{
		Model:   model,
		Prompt:  contextProbePrompt,
		Options: p.options(),
		Context: p.history.LastContext(),
	})
	if err != nil {
		p.rec.Log(CheckContext, false, "Second message failed: "+err.Error())
		return false
	}
	p.history.Add("assistant", second.Response, second.Context)

	text := strings.ToLower(second.Response)
	if !strings.Contains(text, contextExpected) {
		p.rec.Log(CheckContext, false,
			fmt.Sprintf("Model did not remember context: '%s...'", prefix(text, 50)))
		return false
	}
	p.rec.Log(CheckContext, true, "Model correctly maintained context")
	return true
}

// RunAll executes the full battery. The connection check runs first and a
// failure there aborts the run; the remaining checks always all run, each
// converting its own errors into a FAIL result.
func (p *Probe) RunAll(ctx context.Context) {
	fmt.Fprintf(p.out, "\n%s\n", banner("="))
	fmt.Fprintln(p.out, "🚀 AI Terminal Chat Testing Suite")
	fmt.Fprintf(p.out, "%s\n\n", banner("="))

	if !p.ConnectionCheck(ctx) {
		fmt.Fprintln(p.out, "\n⚠️  Cannot proceed without server connection")
		return
	}

	models, err := p.client.ListModels(ctx)
	if err != nil || len(models) == 0 {
		fmt.Fprintln(p.out, "\n⚠️  No models available")
		return
	}

	model := p.model
	if model == "" {
		model = models[0].Name
	}
	fmt.Fprintf(p.out, "\n📦 Using model: %s\n", model)

	checks := []struct {
		name string
		run  func(context.Context, string) bool
	}{
		{CheckAvailability, p.ModelAvailability},
		{CheckSimple, p.SimpleGeneration},
		{CheckStreaming, p.StreamingGeneration},
		{CheckContext, p.ConversationContext},
	}

	for _, check := range checks {
		fmt.Fprintf(p.out, "\nTesting: %s\n", check.name)
		fmt.Fprintf(p.out, "%s\n", strings.Repeat("-", 40))
		check.run(ctx, model)
		time.Sleep(p.pause)
	}

	p.printSummary()
}

func (p *Probe) printSummary() {
	fmt.Fprintf(p.out, "\n%s\n", banner("="))
	fmt.Fprintln(p.out, "📊 Test Summary")
	fmt.Fprintf(p.out, "%s\n", banner("="))

	passed, total := p.rec.PassCount(), p.rec.Total()
	fmt.Fprintf(p.out, "\nResults: %d/%d tests passed\n", passed, total)

	if passed == total {
		fmt.Fprintln(p.out, "✅ All tests passed! Chat functionality is working correctly.")
		return
	}
	fmt.Fprintln(p.out, "❌ Some tests failed. Please check the details above.")
	fmt.Fprintf(p.out, "Failed tests: %s\n", strings.Join(p.rec.FailedNames(), ", "))
}

func banner(c string) string {
	return strings.Repeat(c, 60)
}

// prefix returns the first n characters of s, or all of s if shorter.
func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
