// internal/events/download.go
package events

// Entity types
const (
	EntityAsset = "asset"
)

// Event type constants
const (
	EventDownloadProgressed = "download.progressed"
	EventDownloadFailed     = "download.failed"
	EventAssetDeleted       = "asset.deleted"
)

// Operations a DownloadFailed can report.
const (
	OpDownload = "download"
	OpDelete   = "delete"
)

// DownloadProgressed is emitted as bytes of a transfer arrive.
// Fraction never decreases within one transfer and reaches 1.0 only once
// the asset is in place.
type DownloadProgressed struct {
	BaseEvent
	TransferID    string  `json:"transfer_id"`
	Fraction      float64 `json:"fraction"` // 0.0 - 1.0
	BytesWritten  int64   `json:"bytes_written"`
	BytesExpected int64   `json:"bytes_expected"` // -1 when unknown
}

// Transient reports whether a later progress event supersedes this one.
// Only the completion event is not.
func (e *DownloadProgressed) Transient() bool { return e.Fraction < 1 }

// DownloadFailed is emitted when a transfer or deletion fails.
// The entity ID is empty when the failure cannot be tied to an asset.
type DownloadFailed struct {
	BaseEvent
	TransferID string `json:"transfer_id,omitempty"`
	Op         string `json:"op"`
	Message    string `json:"message"`
}

// AssetDeleted is emitted when a local copy is removed.
type AssetDeleted struct {
	BaseEvent
	FileName string `json:"file_name"`
}

// NewDownloadProgressed builds a progress event for assetID.
func NewDownloadProgressed(assetID, transferID string, fraction float64, written, expected int64) *DownloadProgressed {
	return &DownloadProgressed{
		BaseEvent:     NewBaseEvent(EventDownloadProgressed, EntityAsset, assetID),
		TransferID:    transferID,
		Fraction:      fraction,
		BytesWritten:  written,
		BytesExpected: expected,
	}
}

// NewDownloadFailed builds a failure event. assetID may be empty.
func NewDownloadFailed(op, assetID, transferID, message string) *DownloadFailed {
	return &DownloadFailed{
		BaseEvent:  NewBaseEvent(EventDownloadFailed, EntityAsset, assetID),
		TransferID: transferID,
		Op:         op,
		Message:    message,
	}
}

// NewAssetDeleted builds a deletion event.
func NewAssetDeleted(assetID, fileName string) *AssetDeleted {
	return &AssetDeleted{
		BaseEvent: NewBaseEvent(EventAssetDeleted, EntityAsset, assetID),
		FileName:  fileName,
	}
}
