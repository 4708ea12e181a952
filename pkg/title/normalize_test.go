package title

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"The Making of a Video", "making of a video"},
		{"A Day in Tokyo", "day in tokyo"},
		{"Cats & Dogs", "cats and dogs"},
		{"Café: The Documentary", "cafe documentary"},
		{"Behind-the-Scenes", "behind the scenes"},
		{"Mock_video_01", "mock video 01"},
		{"What's New?", "whats new"},
		{"  Extra   Spaces  ", "extra spaces"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Clean(tt.input)
			if got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
