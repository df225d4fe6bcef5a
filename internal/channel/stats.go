package channel

// Stats is an immutable snapshot of a channel's observable state, copied
// out from behind the channel's mutex so the HTTP API and logging never
// need to reach into channel internals directly. Grounded on the
// teacher's pattern of copying server state under a read lock before
// handing it to a JSON handler (snapServersHandler).
type Stats struct {
	ID             string  `json:"id"`
	HostName       string  `json:"hostName"`
	FriendlyName   string  `json:"friendlyName"`
	Port           int     `json:"port"`
	IsConnected    bool    `json:"isConnected"`
	ReconnectCount uint64  `json:"reconnectCount"`
	QueueDepth     int     `json:"queueDepth"`
	QueueMaxSize   int     `json:"queueMaxSize"`
	BytesPerSecond float64 `json:"bytesPerSecond"`
	State          string  `json:"state"`

	HasResponse  bool          `json:"-"`
	LastResponse ResponseStats `json:"lastClientResponse,omitempty"`
}

// ResponseStats mirrors wire.ClientResponse in JSON-friendly form,
// matching the field names original_source/serialization.h's
// SerializeClientResponseStats uses.
type ResponseStats struct {
	ResponseSize   uint32  `json:"responseSize"`
	SequenceNumber uint64  `json:"sequenceNumber"`
	FlashVersion   uint32  `json:"flashVersion"`
	CurrentClock   float64 `json:"currentClock"`
	OldestPacket   float64 `json:"oldestPacket"`
	NewestPacket   float64 `json:"newestPacket"`
	Brightness     float64 `json:"brightness"`
	WifiSignal     float64 `json:"wifiSignal"`
	BufferSize     uint32  `json:"bufferSize"`
	BufferPos      uint32  `json:"bufferPos"`
	FPSDrawing     uint32  `json:"fpsDrawing"`
	Watts          uint32  `json:"watts"`
}

// Snapshot copies the channel's current observable state.
func (c *Channel) Snapshot() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{
		ID:             c.ID.String(),
		HostName:       c.HostName,
		FriendlyName:   c.FriendlyName,
		Port:           c.Port,
		IsConnected:    c.state == StateConnected,
		ReconnectCount: c.reconnectCount,
		QueueDepth:     len(c.queue),
		QueueMaxSize:   c.queueMaxSize,
		BytesPerSecond: c.bytesPerSecond,
		State:          c.state.String(),
		HasResponse:    c.haveResponse,
	}
	if c.haveResponse {
		r := c.lastResponse
		s.LastResponse = ResponseStats{
			ResponseSize:   r.Size,
			SequenceNumber: r.Sequence,
			FlashVersion:   r.FlashVersion,
			CurrentClock:   r.CurrentClock,
			OldestPacket:   r.OldestPacket,
			NewestPacket:   r.NewestPacket,
			Brightness:     r.Brightness,
			WifiSignal:     r.WifiSignal,
			BufferSize:     r.BufferSize,
			BufferPos:      r.BufferPos,
			FPSDrawing:     r.FPSDrawing,
			Watts:          r.Watts,
		}
	}
	return s
}
