// Package asset models downloadable videos and the local directory that holds
// their cached copies.
package asset

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Descriptor is the metadata for one downloadable video as served by the
// catalog endpoint. It is immutable once fetched.
type Descriptor struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Duration     string `json:"duration"`
	UploadTime   string `json:"uploadTime"`
	Views        string `json:"views"`
	Author       string `json:"author"`
	VideoURL     string `json:"videoUrl"`
	Description  string `json:"description"`
	Subscriber   string `json:"subscriber"`
	IsLive       bool   `json:"isLive"`
}

// List is the catalog payload: a JSON array of descriptors.
type List []Descriptor

// Find returns the descriptor with the given ID.
func (l List) Find(id string) (Descriptor, bool) {
	for _, d := range l {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// FileName returns the local file name for the asset: the final path segment
// of its remote URL.
func (d Descriptor) FileName() (string, error) {
	return FileNameFromURL(d.VideoURL)
}

// FileNameFromURL extracts the last path segment of rawURL.
// Returns ErrInvalidURL when the URL does not name a file.
func FileNameFromURL(rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", fmt.Errorf("%w: empty url", ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, rawURL)
	}

	name := path.Base(u.Path)
	switch name {
	case "", ".", "/", "..":
		return "", fmt.Errorf("%w: %q has no file name", ErrInvalidURL, rawURL)
	}
	return name, nil
}
