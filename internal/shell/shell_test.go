package shell

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"lyricsense/internal/core"
	"lyricsense/internal/llm"
)

type scriptedResolver struct {
	result core.LyricsResult
	inputs []string
}

func (r *scriptedResolver) Resolve(_ context.Context, input string) core.LyricsResult {
	r.inputs = append(r.inputs, input)
	return r.result
}

type scriptedInterpreter struct {
	text   string
	err    error
	inputs []string
}

func (i *scriptedInterpreter) Name() string { return "fake" }

func (i *scriptedInterpreter) Interpret(_ context.Context, lyrics string) (string, error) {
	i.inputs = append(i.inputs, lyrics)
	return i.text, i.err
}

type interpRecorder struct {
	records []string
}

func (r *interpRecorder) ResolveStarted() {}

func (r *interpRecorder) ResolveFinished() {}

func (r *interpRecorder) RecordResolve(string, core.Outcome, time.Duration) {}

func (r *interpRecorder) RecordProviderAttempt(string, string) {}

func (r *interpRecorder) RecordInterpretation(provider, disposition string) {
	r.records = append(r.records, provider+"/"+disposition)
}

// runShell feeds input through a fresh shell and returns everything it
// printed.
func runShell(t *testing.T, input string, resolver Resolver, interpreter core.Interpreter,
	metrics core.MetricsRecorder, interpret bool) string {
	t.Helper()

	config := core.DefaultConfig()
	config.App.Interpret = interpret

	var out bytes.Buffer
	sh := New(resolver, interpreter, metrics, config, strings.NewReader(input), &out, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sh.Run(ctx); err != nil {
		t.Fatalf("Run() returned %v", err)
	}
	return out.String()
}

func TestShell_ResolvesLine(t *testing.T) {
	resolver := &scriptedResolver{
		result: core.SuccessResult("Ticking away the moments", core.SourceCaptions, "✅ got them"),
	}
	interpreter := &scriptedInterpreter{text: "It is about time slipping away."}

	out := runShell(t, "Pink Floyd - Time\n", resolver, interpreter, nil, true)

	if len(resolver.inputs) != 1 || resolver.inputs[0] != "Pink Floyd - Time" {
		t.Errorf("resolver saw %v, want the typed line", resolver.inputs)
	}
	for _, want := range []string{
		"✅ got them",
		"📜 Lyrics",
		"Ticking away the moments",
		"🎭 What Do These Lyrics Mean?",
		"It is about time slipping away.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestShell_NotFoundSkipsLyricsAndInterpretation(t *testing.T) {
	resolver := &scriptedResolver{result: core.NotFoundResult("", "❌ nothing matched")}
	interpreter := &scriptedInterpreter{text: "unused"}

	out := runShell(t, "gibberish\n", resolver, interpreter, nil, true)

	if !strings.Contains(out, "❌ nothing matched") {
		t.Errorf("status line not shown:\n%s", out)
	}
	if strings.Contains(out, "📜 Lyrics") {
		t.Errorf("lyrics section shown for a miss:\n%s", out)
	}
	if len(interpreter.inputs) != 0 {
		t.Errorf("interpreter called %d times on a miss", len(interpreter.inputs))
	}
}

func TestShell_PasteBypassesResolver(t *testing.T) {
	resolver := &scriptedResolver{result: core.NotFoundResult("", "should not appear")}
	interpreter := &scriptedInterpreter{text: "A protest against rote schooling."}

	input := ":paste\nWe don't need no education\nWe don't need no thought control\n.\n"
	out := runShell(t, input, resolver, interpreter, nil, true)

	if len(resolver.inputs) != 0 {
		t.Errorf("resolver called for pasted lyrics: %v", resolver.inputs)
	}
	if len(interpreter.inputs) != 1 {
		t.Fatalf("interpreter called %d times, want 1", len(interpreter.inputs))
	}
	wantBlock := "We don't need no education\nWe don't need no thought control"
	if interpreter.inputs[0] != wantBlock {
		t.Errorf("interpreter got %q, want %q", interpreter.inputs[0], wantBlock)
	}
	if !strings.Contains(out, "✅ Using pasted lyrics") {
		t.Errorf("pasted status not shown:\n%s", out)
	}
}

func TestShell_PasteNothing(t *testing.T) {
	resolver := &scriptedResolver{}
	interpreter := &scriptedInterpreter{}

	out := runShell(t, ":paste\n.\n", resolver, interpreter, nil, true)

	if !strings.Contains(out, "⚠️ Nothing pasted.") {
		t.Errorf("empty paste not reported:\n%s", out)
	}
	if len(interpreter.inputs) != 0 {
		t.Errorf("interpreter called on empty paste")
	}
}

func TestShell_PasteEndsAtInputEnd(t *testing.T) {
	resolver := &scriptedResolver{}
	interpreter := &scriptedInterpreter{text: "short"}

	out := runShell(t, ":paste\nonly line\n", resolver, interpreter, nil, true)

	if len(interpreter.inputs) != 1 || interpreter.inputs[0] != "only line" {
		t.Errorf("interpreter saw %v, want the unterminated paste", interpreter.inputs)
	}
	if !strings.Contains(out, "✅ Using pasted lyrics") {
		t.Errorf("pasted status not shown:\n%s", out)
	}
}

func TestShell_QuitStopsReading(t *testing.T) {
	resolver := &scriptedResolver{result: core.NotFoundResult("", "❌ miss")}

	out := runShell(t, "first\n:quit\nsecond\n", resolver, nil, nil, false)

	if len(resolver.inputs) != 1 || resolver.inputs[0] != "first" {
		t.Errorf("resolver saw %v, want only the line before :quit", resolver.inputs)
	}
	if !strings.Contains(out, "Bye!") {
		t.Errorf("quit farewell missing:\n%s", out)
	}
}

func TestShell_UnknownCommand(t *testing.T) {
	resolver := &scriptedResolver{}

	out := runShell(t, ":wat\n", resolver, nil, nil, false)

	if !strings.Contains(out, `Unknown command ":wat"`) {
		t.Errorf("unknown command not reported:\n%s", out)
	}
	if len(resolver.inputs) != 0 {
		t.Errorf("unknown command reached the resolver: %v", resolver.inputs)
	}
}

func TestShell_InterpretationFailureSurfaced(t *testing.T) {
	resolver := &scriptedResolver{
		result: core.SuccessResult("some lyrics", "genius", "✅ found"),
	}
	interpreter := &scriptedInterpreter{
		err: &llm.BackendError{Provider: "groq", Err: errors.New("rate limited")},
	}
	metrics := &interpRecorder{}

	out := runShell(t, "some song\n", resolver, interpreter, metrics, true)

	if !strings.Contains(out, "✅ found") {
		t.Errorf("acquisition status missing:\n%s", out)
	}
	if !strings.Contains(out, "❌ Interpretation failed: groq: rate limited") {
		t.Errorf("backend error not surfaced verbatim:\n%s", out)
	}
	if len(metrics.records) != 1 || metrics.records[0] != "fake/error" {
		t.Errorf("recorded %v, want [fake/error]", metrics.records)
	}
}

func TestShell_NoProviderStaysQuiet(t *testing.T) {
	resolver := &scriptedResolver{
		result: core.SuccessResult("some lyrics", "genius", "✅ found"),
	}
	metrics := &interpRecorder{}

	out := runShell(t, "some song\n", resolver, &llm.NoopProvider{}, metrics, true)

	if !strings.Contains(out, "some lyrics") {
		t.Errorf("lyrics missing:\n%s", out)
	}
	if strings.Contains(out, "Interpretation failed") || strings.Contains(out, "🎭") {
		t.Errorf("noop provider produced interpretation output:\n%s", out)
	}
	if len(metrics.records) != 1 || metrics.records[0] != "none/skipped" {
		t.Errorf("recorded %v, want [none/skipped]", metrics.records)
	}
}

func TestShell_NoInterpretMode(t *testing.T) {
	resolver := &scriptedResolver{
		result: core.SuccessResult("some lyrics", "genius", "✅ found"),
	}
	interpreter := &scriptedInterpreter{text: "unused"}

	out := runShell(t, "some song\n", resolver, interpreter, nil, false)

	if len(interpreter.inputs) != 0 {
		t.Errorf("interpreter called with interpretation off")
	}
	if strings.Contains(out, "🎭") {
		t.Errorf("interpretation section shown with interpretation off:\n%s", out)
	}
}

func TestShell_RunOnce(t *testing.T) {
	config := core.DefaultConfig()
	config.App.Interpret = false

	resolver := &scriptedResolver{result: core.SuccessResult("text", "genius", "✅ ok")}
	var out bytes.Buffer
	sh := New(resolver, nil, nil, config, strings.NewReader(""), &out, zap.NewNop())

	if err := sh.RunOnce(context.Background(), "Queen - Bohemian Rhapsody"); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	resolver.result = core.NotFoundResult("", "❌ nothing")
	if err := sh.RunOnce(context.Background(), "unknown"); !errors.Is(err, ErrNoLyrics) {
		t.Errorf("RunOnce() error = %v, want ErrNoLyrics", err)
	}
}

func TestShell_HelpAndHardware(t *testing.T) {
	resolver := &scriptedResolver{}

	out := runShell(t, ":help\n:hardware\n", resolver, nil, nil, false)

	if !strings.Contains(out, ":paste") {
		t.Errorf("help text missing commands:\n%s", out)
	}
	if !strings.Contains(out, "CPU:") {
		t.Errorf("hardware profile missing:\n%s", out)
	}
	if len(resolver.inputs) != 0 {
		t.Errorf("commands reached the resolver: %v", resolver.inputs)
	}
}
