package asset

// DownloadState is the caller-visible download state of one asset.
type DownloadState string

const (
	NotDownloaded DownloadState = "not_downloaded"
	Downloading   DownloadState = "downloading"
	Downloaded    DownloadState = "downloaded"
)

// validTransitions defines allowed state transitions.
// NotDownloaded -> Downloaded covers a copy discovered on disk.
var validTransitions = map[DownloadState][]DownloadState{
	NotDownloaded: {Downloading, Downloaded},
	Downloading:   {Downloaded, NotDownloaded},
	Downloaded:    {NotDownloaded},
}

// CanTransitionTo returns true if moving from s to target is valid.
func (s DownloadState) CanTransitionTo(target DownloadState) bool {
	for _, v := range validTransitions[s] {
		if v == target {
			return true
		}
	}
	return false
}

// Label returns the human-readable form used by the CLI.
func (s DownloadState) Label() string {
	switch s {
	case Downloading:
		return "Downloading"
	case Downloaded:
		return "Downloaded"
	default:
		return "Not downloaded"
	}
}
