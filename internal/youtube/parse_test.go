package youtube

import (
	"testing"
	"time"
)

func TestParseTimedText_ClassicFormat(t *testing.T) {
	data := `<?xml version="1.0" encoding="utf-8"?>
<transcript>
	<text start="0.2" dur="1.5">Hello &amp;amp; welcome</text>
	<text start="2" dur="1">Second line</text>
</transcript>`

	segments, err := parseTimedText(data)
	if err != nil {
		t.Fatalf("parseTimedText() error = %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("parseTimedText() returned %d segments, want 2", len(segments))
	}
	if segments[0].Text != "Hello & welcome" {
		t.Errorf("segment 0 text = %q, want %q", segments[0].Text, "Hello & welcome")
	}
	if segments[0].Start != 200*time.Millisecond {
		t.Errorf("segment 0 start = %v, want 200ms", segments[0].Start)
	}
	if segments[0].Duration != 1500*time.Millisecond {
		t.Errorf("segment 0 duration = %v, want 1.5s", segments[0].Duration)
	}
	if segments[1].Text != "Second line" {
		t.Errorf("segment 1 text = %q, want %q", segments[1].Text, "Second line")
	}
}

func TestParseTimedText_ModernFormat(t *testing.T) {
	data := `<timedtext format="3">
<body>
	<p t="1000" d="2000"><s>Never</s> <s>gonna</s></p>
	<p t="3000" d="1000">give you up</p>
</body>
</timedtext>`

	segments, err := parseTimedText(data)
	if err != nil {
		t.Fatalf("parseTimedText() error = %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("parseTimedText() returned %d segments, want 2", len(segments))
	}
	if segments[0].Text != "Never gonna" {
		t.Errorf("segment 0 text = %q, want %q", segments[0].Text, "Never gonna")
	}
	if segments[0].Start != time.Second {
		t.Errorf("segment 0 start = %v, want 1s", segments[0].Start)
	}
	if segments[0].Duration != 2*time.Second {
		t.Errorf("segment 0 duration = %v, want 2s", segments[0].Duration)
	}
	if segments[1].Text != "give you up" {
		t.Errorf("segment 1 text = %q, want %q", segments[1].Text, "give you up")
	}
}

func TestParseTimedText_BlankSegmentsDropped(t *testing.T) {
	data := `<transcript><text start="0" dur="1">   </text><text start="1" dur="1">kept</text></transcript>`

	segments, err := parseTimedText(data)
	if err != nil {
		t.Fatalf("parseTimedText() error = %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("parseTimedText() returned %d segments, want 1", len(segments))
	}
	if segments[0].Text != "kept" {
		t.Errorf("segment text = %q, want %q", segments[0].Text, "kept")
	}
}

func TestParseTimedText_NoElements(t *testing.T) {
	segments, err := parseTimedText("no caption elements here")
	if err != nil {
		t.Fatalf("parseTimedText() error = %v", err)
	}
	if len(segments) != 0 {
		t.Errorf("parseTimedText() returned %d segments, want 0", len(segments))
	}
}

func TestParseVTT(t *testing.T) {
	data := `WEBVTT
Kind: captions
Language: en

NOTE some tooling comment

1
00:00:01.000 --> 00:00:03.500
<c.colorE5E5E5>We're no strangers</c> to <00:00:02.000>love

2
00:00:03.500 --> 00:00:06.000
You know the rules
and so do I
`

	segments := parseVTT(data)
	if len(segments) != 2 {
		t.Fatalf("parseVTT() returned %d segments, want 2", len(segments))
	}
	if segments[0].Text != "We're no strangers to love" {
		t.Errorf("segment 0 text = %q, want %q", segments[0].Text, "We're no strangers to love")
	}
	if segments[0].Start != time.Second {
		t.Errorf("segment 0 start = %v, want 1s", segments[0].Start)
	}
	if segments[0].Duration != 2500*time.Millisecond {
		t.Errorf("segment 0 duration = %v, want 2.5s", segments[0].Duration)
	}
	if segments[1].Text != "You know the rules and so do I" {
		t.Errorf("segment 1 text = %q, want %q", segments[1].Text, "You know the rules and so do I")
	}
}

func TestParseVTT_RollingCaptionsDeduplicated(t *testing.T) {
	// Auto-generated tracks repeat the previous cue's last line at the start
	// of the next cue.
	data := `WEBVTT

00:00:00.000 --> 00:00:02.000
hello world

00:00:02.000 --> 00:00:04.000
hello world
next line
`

	segments := parseVTT(data)
	if len(segments) != 2 {
		t.Fatalf("parseVTT() returned %d segments, want 2", len(segments))
	}
	if segments[0].Text != "hello world" {
		t.Errorf("segment 0 text = %q, want %q", segments[0].Text, "hello world")
	}
	if segments[1].Text != "next line" {
		t.Errorf("segment 1 text = %q, want %q", segments[1].Text, "next line")
	}
}

func TestParseVTT_EmptyInput(t *testing.T) {
	if segments := parseVTT(""); len(segments) != 0 {
		t.Errorf("parseVTT(\"\") returned %d segments, want 0", len(segments))
	}
}

func TestParseVTTTimestamp(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"00:00:00.000", 0},
		{"00:01:23.456", time.Minute + 23*time.Second + 456*time.Millisecond},
		{"01:00:00.001", time.Hour + time.Millisecond},
	}

	for _, tt := range tests {
		if got := parseVTTTimestamp(tt.input); got != tt.want {
			t.Errorf("parseVTTTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
