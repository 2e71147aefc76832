package core

import (
	"strings"
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestChunkID(t *testing.T) {
	id1 := ChunkID("guide.pdf", 2, 3)
	id2 := ChunkID("guide.pdf", 2, 3)
	if id1 != id2 {
		t.Errorf("ChunkID() is not deterministic: %q vs %q", id1, id2)
	}

	if ChunkID("guide.pdf", 2, 3) == ChunkID("guide.pdf", 2, 4) {
		t.Error("ChunkID() collided for different ordinals")
	}
	if ChunkID("guide.pdf", 2, 3) == ChunkID("other.pdf", 2, 3) {
		t.Error("ChunkID() collided for different files")
	}

	// Names with arbitrary characters must still produce usable keys.
	id := ChunkID("весна отчет.pdf", 1, 0)
	if strings.ContainsAny(id, " /\\") {
		t.Errorf("ChunkID() produced unsafe key %q", id)
	}
}

func TestSourcePageLabel(t *testing.T) {
	if got := SourcePageLabel("notes.txt", 0); got != "notes.txt" {
		t.Errorf("SourcePageLabel() = %q, want %q", got, "notes.txt")
	}
	if got := SourcePageLabel("guide.pdf", 4); got != "guide.pdf#page=4" {
		t.Errorf("SourcePageLabel() = %q, want %q", got, "guide.pdf#page=4")
	}
}

func TestFormatResults(t *testing.T) {
	if got := FormatResults(nil); got != "" {
		t.Errorf("FormatResults(nil) = %q, want empty string", got)
	}

	results := []*SearchResult{
		{SourcePage: "guide.pdf#page=1", Content: "first"},
		{SourcePage: "notes.txt", Content: "second"},
	}
	want := "[guide.pdf#page=1]: first\n\n[notes.txt]: second"
	if got := FormatResults(results); got != want {
		t.Errorf("FormatResults() = %q, want %q", got, want)
	}
}
