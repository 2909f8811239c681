// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeExport(t *testing.T, kind, id, body string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "2014-06-01T040203", "EPFLx-CS305-2014", kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, id+".xml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestToDocument(t *testing.T) {
	root, err := parseFragment(`<outer kind="a"><inner x="1">hello</inner><inner x="2"/><plain>text</plain></outer>`)
	if err != nil {
		t.Fatalf("parseFragment() error = %v", err)
	}
	outer := root.findAll("outer")
	if len(outer) != 1 {
		t.Fatalf("found %d outer elements, want 1", len(outer))
	}
	doc, ok := outer[0].toDocument().(map[string]any)
	if !ok {
		t.Fatalf("toDocument() = %T, want map", outer[0].toDocument())
	}
	if doc["@kind"] != "a" {
		t.Errorf("@kind = %v, want a", doc["@kind"])
	}
	inners, ok := doc["inner"].([]any)
	if !ok || len(inners) != 2 {
		t.Fatalf("inner = %v, want two-element array", doc["inner"])
	}
	first, ok := inners[0].(map[string]any)
	if !ok || first["@x"] != "1" || first["#text"] != "hello" {
		t.Errorf("inner[0] = %v, want @x=1 with #text hello", inners[0])
	}
	second, ok := inners[1].(map[string]any)
	if !ok || second["@x"] != "2" {
		t.Errorf("inner[1] = %v, want @x=2", inners[1])
	}
	if doc["plain"] != "text" {
		t.Errorf("plain = %v, want bare text value", doc["plain"])
	}
}

func TestToDocument_EmptyElement(t *testing.T) {
	root, err := parseFragment(`<a><b/></a>`)
	if err != nil {
		t.Fatal(err)
	}
	doc := root.findAll("a")[0].toDocument().(map[string]any)
	if doc["b"] != nil {
		t.Errorf("empty element = %v, want nil", doc["b"])
	}
}

func TestParseVideoFile(t *testing.T) {
	path := writeExport(t, "video", "ab12cd34", `
<video youtube="1.00:dQw4w9WgXcQ" youtube_id_1_0="dQw4w9WgXcQ" display_name="Lecture 1"
       sub="subs_dQw4w9WgXcQ" url_name="lec1"/>
<video display_name="No playback reference"/>
`)
	durations := 0
	records, err := ParseVideoFile(context.Background(), path, func(ctx context.Context, id string) (string, error) {
		durations++
		if id != "dQw4w9WgXcQ" {
			t.Errorf("duration lookup for %q", id)
		}
		return "0:03:32", nil
	})
	if err != nil {
		t.Fatalf("ParseVideoFile() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 with the reference-less module skipped", len(records))
	}
	if durations != 1 {
		t.Errorf("duration lookups = %d, want 1", durations)
	}
	v := records[0]
	if v.CourseID != "EPFLx-CS305-2014" || v.VideoID != "ab12cd34" {
		t.Errorf("ids = (%q, %q), want (EPFLx-CS305-2014, ab12cd34)", v.CourseID, v.VideoID)
	}
	if v.LastLoggedDate != "2014-06-01" {
		t.Errorf("LastLoggedDate = %q, want 2014-06-01", v.LastLoggedDate)
	}
	if v.Title != "Lecture 1" {
		t.Errorf("Title = %v, want Lecture 1", v.Title)
	}
	if v.Length != "0:03:32" {
		t.Errorf("Length = %v, want 0:03:32", v.Length)
	}
	if v.YoutubeID != "dQw4w9WgXcQ" {
		t.Errorf("YoutubeID = %q, want dQw4w9WgXcQ", v.YoutubeID)
	}
	if v.Downloadable != nil {
		t.Errorf("Downloadable = %v, want nil for the absent attribute", v.Downloadable)
	}
}

func TestParseVideoFile_NotFoundRecordsNullLength(t *testing.T) {
	path := writeExport(t, "video", "ab12cd34", `<video youtube_id_1_0="gone"/>`)
	records, err := ParseVideoFile(context.Background(), path, func(ctx context.Context, id string) (string, error) {
		return "", ErrVideoNotFound
	})
	if err != nil {
		t.Fatalf("ParseVideoFile() error = %v", err)
	}
	if len(records) != 1 || records[0].Length != nil {
		t.Errorf("records = %+v, want one record with null length", records)
	}
}

func TestParseVideoFile_LookupFailureIsFatal(t *testing.T) {
	path := writeExport(t, "video", "ab12cd34", `<video youtube_id_1_0="x"/>`)
	_, err := ParseVideoFile(context.Background(), path, func(ctx context.Context, id string) (string, error) {
		return "", ErrLookupBlocked
	})
	if !errors.Is(err, ErrLookupBlocked) {
		t.Errorf("ParseVideoFile() error = %v, want ErrLookupBlocked", err)
	}
}

func TestParseVideoFile_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video.xml")
	if err := os.WriteFile(path, []byte("<video/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseVideoFile(context.Background(), path, nil); !errors.Is(err, ErrBadContentPath) {
		t.Errorf("ParseVideoFile() error = %v, want ErrBadContentPath", err)
	}
}

func TestParseProblemFile(t *testing.T) {
	path := writeExport(t, "problem", "ef56ab78", `
<problem display_name="Quiz 1" max_attempts="3">
  <p>Pick the right answer.</p>
  <multiplechoiceresponse>
    <choicegroup type="MultipleChoice">
      <choice correct="false">red</choice>
      <choice correct="true">blue</choice>
    </choicegroup>
  </multiplechoiceresponse>
  <solution>Blue, obviously.</solution>
</problem>
`)
	records, err := ParseProblemFile(path)
	if err != nil {
		t.Fatalf("ParseProblemFile() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	p := records[0]
	if p.ProblemID != "ef56ab78" || p.CourseID != "EPFLx-CS305-2014" {
		t.Errorf("ids = (%q, %q)", p.ProblemID, p.CourseID)
	}
	if p.MaxAttempts != "3" || p.DisplayName != "Quiz 1" {
		t.Errorf("attrs = (%v, %v), want (3, Quiz 1)", p.MaxAttempts, p.DisplayName)
	}
	if len(p.ProblemParts) != 2 {
		t.Fatalf("got %d parts, want multiplechoiceresponse and solution", len(p.ProblemParts))
	}
	// Parts appear in recognized-type order, not document order.
	if p.ProblemParts[0].PartType != "multiplechoiceresponse" {
		t.Errorf("parts[0] = %q, want multiplechoiceresponse", p.ProblemParts[0].PartType)
	}
	if p.ProblemParts[1].PartType != "solution" {
		t.Errorf("parts[1] = %q, want solution", p.ProblemParts[1].PartType)
	}
	tree, ok := p.ProblemParts[0].PartTree["multiplechoiceresponse"].(map[string]any)
	if !ok {
		t.Fatalf("PartTree root = %T, want map", p.ProblemParts[0].PartTree["multiplechoiceresponse"])
	}
	group, ok := tree["choicegroup"].(map[string]any)
	if !ok {
		t.Fatalf("choicegroup = %v, want nested map", tree["choicegroup"])
	}
	choices, ok := group["choice"].([]any)
	if !ok || len(choices) != 2 {
		t.Fatalf("choice = %v, want two-element array", group["choice"])
	}
	for _, want := range []string{"Pick the right answer.", "blue", "Blue, obviously."} {
		if !strings.Contains(p.FullContent, want) {
			t.Errorf("FullContent missing %q:\n%s", want, p.FullContent)
		}
	}
}

func TestParseProblemFile_Latin1(t *testing.T) {
	// 0xE9 is "e" acute in Latin-1 and an invalid byte sequence in UTF-8.
	body := []byte(`<problem display_name="R`)
	body = append(body, 0xE9)
	body = append(body, []byte(`vision"><solution>ok</solution></problem>`)...)
	dir := filepath.Join(t.TempDir(), "2014-06-01", "EPFLx-CS305-2014", "problem")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "aa11.xml")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}
	records, err := ParseProblemFile(path)
	if err != nil {
		t.Fatalf("ParseProblemFile() error = %v", err)
	}
	if records[0].DisplayName != "R\u00e9vision" {
		t.Errorf("DisplayName = %v, want Révision", records[0].DisplayName)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00:00"},
		{59, "0:00:59"},
		{212, "0:03:32"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{36005, "10:00:05"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.seconds); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
