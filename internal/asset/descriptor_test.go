package asset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileNameFromURL(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"http://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4", "BigBuckBunny.mp4", false},
		{"https://fake.domain.com/video_01.mp4?token=abc", "video_01.mp4", false},
		{"https://fake.domain.com/a%20b.mp4", "a b.mp4", false},
		{"", "", true},
		{"not a url", "", true},
		{"https://fake.domain.com/", "", true},
		{"https://fake.domain.com", "", true},
		{"/relative/video.mp4", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := FileNameFromURL(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescriptor_JSONFieldNames(t *testing.T) {
	raw := `{
		"id": "1",
		"title": "Big Buck Bunny",
		"thumbnailUrl": "https://example.com/bbb.jpg",
		"duration": "8:18",
		"uploadTime": "May 9, 2011",
		"views": "24,969,123",
		"author": "Vlc Media Player",
		"videoUrl": "https://example.com/BigBuckBunny.mp4",
		"description": "Big Buck Bunny tells the story of a giant rabbit.",
		"subscriber": "25254545 Subscribers",
		"isLive": true
	}`

	var d Descriptor
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	assert.Equal(t, "1", d.ID)
	assert.Equal(t, "https://example.com/bbb.jpg", d.ThumbnailURL)
	assert.Equal(t, "https://example.com/BigBuckBunny.mp4", d.VideoURL)
	assert.Equal(t, "25254545 Subscribers", d.Subscriber)
	assert.True(t, d.IsLive)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"thumbnailUrl":"https://example.com/bbb.jpg"`)
	assert.Contains(t, string(out), `"videoUrl":"https://example.com/BigBuckBunny.mp4"`)
}

func TestList_Find(t *testing.T) {
	l := List{{ID: "1", Title: "One"}, {ID: "2", Title: "Two"}}

	d, ok := l.Find("2")
	require.True(t, ok)
	assert.Equal(t, "Two", d.Title)

	_, ok = l.Find("3")
	assert.False(t, ok)
}
