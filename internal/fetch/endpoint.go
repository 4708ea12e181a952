package fetch

import "net/url"

// Endpoint is a fully qualified URL the client can fetch.
type Endpoint string

// VideosList serves the JSON array of video descriptors.
const VideosList Endpoint = "https://raw.githubusercontent.com/cvillanueva/VideoPlayerDemo/refs/heads/main/videos.json"

// URL parses the endpoint. It returns false unless the endpoint is an
// absolute http or https URL.
func (e Endpoint) URL() (*url.URL, bool) {
	u, err := url.Parse(string(e))
	if err != nil {
		return nil, false
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, false
	}
	return u, true
}
