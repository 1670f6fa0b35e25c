// Package shell implements the terminal frontend, an interactive REPL and a
// one-shot mode over the same resolution pipeline.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"lyricsense/internal/core"
	"lyricsense/internal/hardware"
	"lyricsense/internal/llm"
)

// Resolver turns one input line into a LyricsResult.
type Resolver interface {
	Resolve(ctx context.Context, input string) core.LyricsResult
}

// ErrNoLyrics reports a one-shot invocation that ended without lyrics text.
var ErrNoLyrics = errors.New("no lyrics acquired")

// Shell reads song references from in, prints resolution statuses verbatim,
// and shows lyrics and their interpretation on out.
type Shell struct {
	resolver    Resolver
	interpreter core.Interpreter
	metrics     core.MetricsRecorder
	interpret   bool
	policy      hardware.Policy
	in          io.Reader
	out         io.Writer
	logger      *zap.Logger
}

// New wires a shell. interpreter and metrics may be nil; a nil interpreter
// behaves like interpretation turned off.
func New(
	resolver Resolver,
	interpreter core.Interpreter,
	metrics core.MetricsRecorder,
	config *core.Config,
	in io.Reader,
	out io.Writer,
	logger *zap.Logger,
) *Shell {
	return &Shell{
		resolver:    resolver,
		interpreter: interpreter,
		metrics:     metrics,
		interpret:   config.App.Interpret,
		policy:      hardware.PolicyFromConfig(&config.Hardware),
		in:          in,
		out:         out,
		logger:      logger,
	}
}

// Run drives the interactive loop until :quit, end of input, or ctx
// cancellation. The input reader is consumed from a goroutine; cancelling
// ctx releases it.
func (s *Shell) Run(ctx context.Context) error {
	s.printBanner()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(s.out, "\n> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			return nil
		case err := <-scanErr:
			fmt.Fprintln(s.out)
			return err
		case line := <-lines:
			if quit := s.handleLine(ctx, line, lines, scanErr); quit {
				return nil
			}
		}
	}
}

// RunOnce resolves a single input and returns ErrNoLyrics when the pass
// ended without text.
func (s *Shell) RunOnce(ctx context.Context, input string) error {
	result := s.resolveAndShow(ctx, input)
	if result.Outcome != core.OutcomeSuccess {
		return ErrNoLyrics
	}
	return nil
}

func (s *Shell) handleLine(ctx context.Context, line string, lines chan string, scanErr chan error) bool {
	input := strings.TrimSpace(line)
	switch input {
	case "":
		return false
	case ":quit":
		fmt.Fprintln(s.out, "Bye!")
		return true
	case ":help":
		s.printHelp()
		return false
	case ":hardware":
		s.printHardware()
		return false
	case ":paste":
		s.handlePaste(ctx, lines, scanErr)
		return false
	default:
		if strings.HasPrefix(input, ":") {
			fmt.Fprintf(s.out, "Unknown command %q. Try :help.\n", input)
			return false
		}
		s.resolveAndShow(ctx, input)
		return false
	}
}

func (s *Shell) resolveAndShow(ctx context.Context, input string) core.LyricsResult {
	result := s.resolver.Resolve(ctx, input)
	fmt.Fprintln(s.out, result.Status)
	if result.Outcome != core.OutcomeSuccess {
		return result
	}

	fmt.Fprintf(s.out, "\n📜 Lyrics\n\n%s\n", result.Text)
	s.interpretAndShow(ctx, result.Text)
	return result
}

// handlePaste collects lines until a lone "." and hands the block straight
// to interpretation, skipping acquisition entirely. A consumed scanner error
// is pushed back so the main loop still sees end of input.
func (s *Shell) handlePaste(ctx context.Context, lines chan string, scanErr chan error) {
	fmt.Fprintln(s.out, "Paste lyrics, end with a single '.' line:")

	var collected []string
collect:
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-scanErr:
			scanErr <- err
			break collect
		case line := <-lines:
			if strings.TrimSpace(line) == "." {
				break collect
			}
			collected = append(collected, line)
		}
	}

	text := strings.TrimSpace(strings.Join(collected, "\n"))
	if text == "" {
		fmt.Fprintln(s.out, "⚠️ Nothing pasted.")
		return
	}

	result := core.SuccessResult(text, core.SourcePasted, core.StatusPastedLyrics())
	fmt.Fprintln(s.out, result.Status)
	s.interpretAndShow(ctx, result.Text)
}

func (s *Shell) interpretAndShow(ctx context.Context, lyrics string) {
	if !s.interpret || s.interpreter == nil {
		return
	}

	interpretation, err := s.interpreter.Interpret(ctx, lyrics)
	if err != nil {
		if errors.Is(err, llm.ErrNoProvider) {
			s.recordInterpretation(core.AttemptSkipped)
			return
		}
		s.recordInterpretation(core.AttemptError)
		fmt.Fprintf(s.out, "\n❌ Interpretation failed: %v\n", err)
		return
	}

	s.recordInterpretation(core.AttemptOK)
	fmt.Fprintf(s.out, "\n🎭 What Do These Lyrics Mean?\n\n%s\n", interpretation)
}

func (s *Shell) recordInterpretation(disposition string) {
	if s.metrics != nil {
		s.metrics.RecordInterpretation(s.interpreter.Name(), disposition)
	}
}

func (s *Shell) printBanner() {
	fmt.Fprintln(s.out, "🎧 LyricSense")
	fmt.Fprintln(s.out, "Find song lyrics and get an interpretation.")
	fmt.Fprintln(s.out, "Type 'Artist - Song Name' or paste a YouTube or Spotify link.")
	fmt.Fprintln(s.out, "Commands: :paste, :hardware, :help, :quit")
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, "Type 'Artist - Song Name' or paste a YouTube or Spotify link.")
	fmt.Fprintln(s.out, "Commands:")
	fmt.Fprintln(s.out, "  :paste     read lyrics from the terminal until a line with only '.'")
	fmt.Fprintln(s.out, "  :hardware  show this machine and a local model suggestion")
	fmt.Fprintln(s.out, "  :help      show this help")
	fmt.Fprintln(s.out, "  :quit      exit")
}

func (s *Shell) printHardware() {
	hardware.WriteReport(s.out, hardware.Detect(s.logger), s.policy)
}
