package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "test content",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "This is a much longer piece of content that should still hash consistently",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestDesiredCity_Slug(t *testing.T) {
	tests := []struct {
		name string
		city DesiredCity
		want string
	}{
		{
			name: "basic city",
			city: DesiredCity{
				Name: "Berlin",
			},
			want: "berlin",
		},
		{
			name: "mixed case with surrounding whitespace",
			city: DesiredCity{
				Name: "  New York  ",
			},
			want: "new york",
		},
		{
			name: "empty name",
			city: DesiredCity{
				Name: "",
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.city.Slug()
			if got != tt.want {
				t.Errorf("DesiredCity.Slug() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDesiredCity_SlugStableID(t *testing.T) {
	a := DesiredCity{Name: "Hamburg"}
	b := DesiredCity{Name: " hamburg "}

	if IDFromContent(a.Slug()) != IDFromContent(b.Slug()) {
		t.Errorf("slug-derived IDs differ for equivalent city names")
	}
}
