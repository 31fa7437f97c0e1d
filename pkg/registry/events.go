package registry

// Event is a registry lifecycle notification. Subscribers receive one
// of the concrete event types below.
type Event any

// Initialized fires when parsed catalogue data has been swapped into
// the registry and is ready to read.
type Initialized struct{}

// Fetched fires when fresh server replies have been written to the
// cache, before parsing starts.
type Fetched struct{}

// RequestFailed carries the failure of a catalogue request.
type RequestFailed struct {
	Message string
}

// FavoritesChanged fires after a favorite was added or removed.
type FavoritesChanged struct{}

// FileDownloaded carries the destination path of a completed file
// download.
type FileDownloaded struct {
	Path string
}

// DownloadFailed carries the errors of a failed file download.
type DownloadFailed struct {
	Errors []string
}
