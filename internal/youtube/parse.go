package youtube

import (
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"lyricsense/internal/core"
)

var (
	vttHeaderRegex   = regexp.MustCompile(`^WEBVTT\b.*$`)
	vttTimingRegex   = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2}\.\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2}\.\d{3})`)
	vttTagRegex      = regexp.MustCompile(`<[^>]+>`)
	vttCueIDRegex    = regexp.MustCompile(`^\d+$`)
	vttMetadataRegex = regexp.MustCompile(`^(Kind|Language|NOTE|STYLE|REGION)\b`)
)

// parseTimedText parses the XML caption formats. The classic format carries
// <text start="12.3" dur="4.5"> elements with seconds; the newer one carries
// <p t="12300" d="4500"> elements with milliseconds, sometimes with nested
// <s> word spans. Both are handled by the same token walk.
func parseTimedText(data string) ([]core.TranscriptSegment, error) {
	decoder := xml.NewDecoder(strings.NewReader(data))
	decoder.Strict = false

	var segments []core.TranscriptSegment
	var current *core.TranscriptSegment

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed caption XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "text" || t.Name.Local == "p" {
				segments = append(segments, core.TranscriptSegment{
					Start:    timedTextAttr(t, "start", "t"),
					Duration: timedTextAttr(t, "dur", "d"),
				})
				current = &segments[len(segments)-1]
			}
		case xml.EndElement:
			if t.Name.Local == "text" || t.Name.Local == "p" {
				current = nil
			}
		case xml.CharData:
			if current != nil {
				current.Text += string(t)
			}
		}
	}

	for i := range segments {
		// Tracks escape entities twice, so one pass remains after decoding.
		segments[i].Text = html.UnescapeString(segments[i].Text)
	}
	return compactSegments(segments), nil
}

// timedTextAttr reads a timing attribute, trying the seconds-valued name
// first and the milliseconds-valued name second.
func timedTextAttr(el xml.StartElement, secName, msName string) time.Duration {
	for _, attr := range el.Attr {
		switch attr.Name.Local {
		case secName:
			if v, err := strconv.ParseFloat(attr.Value, 64); err == nil {
				return time.Duration(v * float64(time.Second))
			}
		case msName:
			if v, err := strconv.ParseInt(attr.Value, 10, 64); err == nil {
				return time.Duration(v) * time.Millisecond
			}
		}
	}
	return 0
}

// parseVTT extracts cue text from a WEBVTT track. Auto-generated tracks roll
// the previous cue's line into the next cue, so a line identical to the one
// before it is kept only once.
func parseVTT(raw string) []core.TranscriptSegment {
	var segments []core.TranscriptSegment
	var current *core.TranscriptSegment
	prevLine := ""

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")

		if m := vttTimingRegex.FindStringSubmatch(line); m != nil {
			start := parseVTTTimestamp(m[1])
			end := parseVTTTimestamp(m[2])
			segments = append(segments, core.TranscriptSegment{Start: start, Duration: end - start})
			current = &segments[len(segments)-1]
			continue
		}

		if vttHeaderRegex.MatchString(line) || vttMetadataRegex.MatchString(line) {
			continue
		}
		if vttCueIDRegex.MatchString(strings.TrimSpace(line)) {
			continue
		}

		line = vttTagRegex.ReplaceAllString(line, "")
		line = strings.TrimSpace(html.UnescapeString(line))
		if line == "" || current == nil {
			continue
		}
		if line == prevLine {
			continue
		}

		if current.Text != "" {
			current.Text += " "
		}
		current.Text += line
		prevLine = line
	}

	return compactSegments(segments)
}

func parseVTTTimestamp(ts string) time.Duration {
	h, _ := strconv.Atoi(ts[0:2])
	m, _ := strconv.Atoi(ts[3:5])
	s, _ := strconv.Atoi(ts[6:8])
	ms, _ := strconv.Atoi(ts[9:12])
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond
}

func compactSegments(segments []core.TranscriptSegment) []core.TranscriptSegment {
	kept := segments[:0]
	for _, s := range segments {
		if strings.TrimSpace(s.Text) != "" {
			kept = append(kept, s)
		}
	}
	return kept
}
