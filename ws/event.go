package ws

// Op identifies the kind of an outbound or inbound WebSocket event.
type Op string

// Client-to-server ops.
const (
	OpHeartbeat Op = "heartbeat"
)

// Server-to-client ops.
const (
	OpHeartbeatAck Op = "heartbeat_ack"

	OpArtistCreated Op = "artist_created"
	OpArtistUpdated Op = "artist_updated"
	OpArtistDeleted Op = "artist_deleted"

	OpAlbumCreated Op = "album_created"
	OpAlbumUpdated Op = "album_updated"
	OpAlbumDeleted Op = "album_deleted"

	OpCoverUploaded Op = "cover_uploaded"
	OpCoverDeleted  Op = "cover_deleted"

	OpRegionsSynced Op = "regions_synced"
)

// Event is the wire envelope for every WebSocket message. Seq is a
// monotonically increasing counter set by the hub on broadcast so
// clients can detect missed events.
type Event struct {
	Op   Op    `json:"op"`
	Data any   `json:"d,omitempty"`
	Seq  int64 `json:"seq,omitempty"`
}

// DeletedData carries the id of a removed resource.
type DeletedData struct {
	ID string `json:"id"`
}

// RegionsSyncedData summarizes one reconciliation pass.
type RegionsSyncedData struct {
	Active      int `json:"active"`
	Deactivated int `json:"deactivated"`
}
