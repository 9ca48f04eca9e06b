// Package wire defines the serial envelope model exchanged with LoRa mesh
// tactical radios, and its CBOR codec.
//
// Every SLIP frame carries exactly one Packet. Outbound packets hold a
// ToDevice command; inbound packets hold a FromDevice payload correlated to
// the originating command by request ID. ToDevice and FromDevice are
// oneof-style: exactly one payload field is populated.
package wire

// MessagePriority is the delivery priority of a text message.
type MessagePriority uint32

const (
	PriorityNormal   MessagePriority = 3
	PriorityHigh     MessagePriority = 4
	PriorityCritical MessagePriority = 5
)

// EmergencyType classifies an emergency alert.
type EmergencyType uint32

const (
	EmergencyUnspecified EmergencyType = iota
	EmergencyMedical
	EmergencySecurity
	EmergencyOther
)

// GPSCoordinate is a geographic position fix.
type GPSCoordinate struct {
	Latitude  float64 `cbor:"latitude"`
	Longitude float64 `cbor:"longitude"`
	Altitude  float64 `cbor:"altitude,omitempty"`
	Accuracy  float64 `cbor:"accuracy,omitempty"`
	Speed     float64 `cbor:"speed,omitempty"`
	Bearing   float64 `cbor:"bearing,omitempty"`
	Timestamp uint64  `cbor:"timestamp,omitempty"`
}

// NodeInfo describes a single mesh node.
type NodeInfo struct {
	NodeID       string         `cbor:"node_id"`
	Position     *GPSCoordinate `cbor:"position,omitempty"`
	BatteryLevel uint32         `cbor:"battery_level,omitempty"`
	RSSI         int32          `cbor:"rssi,omitempty"`
	LastSeen     uint64         `cbor:"last_seen,omitempty"`
}

// RouteEntry is one row of the device routing table.
type RouteEntry struct {
	Destination string `cbor:"destination"`
	NextHop     string `cbor:"next_hop"`
	HopCount    uint32 `cbor:"hop_count"`
	RSSI        int32  `cbor:"rssi,omitempty"`
	LastUpdate  uint64 `cbor:"last_update,omitempty"`
}

// RosterEntry is one row of the team roster.
type RosterEntry struct {
	Node     NodeInfo `cbor:"node"`
	IsSelf   bool     `cbor:"is_self,omitempty"`
	IsActive bool     `cbor:"is_active,omitempty"`
}

// --- Requests (host → device) ---

type GetInfoRequest struct{}

type GetGPSRequest struct{}

type GetNeighborsRequest struct{}

type GetRoutesRequest struct{}

type GetRosterRequest struct{}

type GetStatsRequest struct{}

type SetGPSRequest struct {
	Position  GPSCoordinate `cbor:"position"`
	UseStatic bool          `cbor:"use_static,omitempty"`
}

type SetNodeIDRequest struct {
	NodeID string `cbor:"node_id"`
}

type SendMessageRequest struct {
	// Destination is empty for broadcast; the mesh handles routing.
	Destination string          `cbor:"destination,omitempty"`
	Text        string          `cbor:"text"`
	Priority    MessagePriority `cbor:"priority,omitempty"`
}

type SendGPSRequest struct{}

type SendEmergencyRequest struct {
	Type        EmergencyType `cbor:"emergency_type,omitempty"`
	Description string        `cbor:"description,omitempty"`
}

type PingRequest struct {
	Destination string `cbor:"destination"`
}

type DiscoverRequest struct{}

type JoinRequest struct{}

// ToDevice is the outbound command envelope. Exactly one field is non-nil.
type ToDevice struct {
	GetInfo       *GetInfoRequest       `cbor:"get_info,omitempty"`
	GetGPS        *GetGPSRequest        `cbor:"get_gps,omitempty"`
	GetNeighbors  *GetNeighborsRequest  `cbor:"get_neighbors,omitempty"`
	GetRoutes     *GetRoutesRequest     `cbor:"get_routes,omitempty"`
	GetRoster     *GetRosterRequest     `cbor:"get_roster,omitempty"`
	GetStats      *GetStatsRequest      `cbor:"get_stats,omitempty"`
	SetGPS        *SetGPSRequest        `cbor:"set_gps,omitempty"`
	SetNodeID     *SetNodeIDRequest     `cbor:"set_node_id,omitempty"`
	SendMessage   *SendMessageRequest   `cbor:"send_message,omitempty"`
	SendGPS       *SendGPSRequest       `cbor:"send_gps,omitempty"`
	SendEmergency *SendEmergencyRequest `cbor:"send_emergency,omitempty"`
	Ping          *PingRequest          `cbor:"ping,omitempty"`
	Discover      *DiscoverRequest      `cbor:"discover,omitempty"`
	Join          *JoinRequest          `cbor:"join,omitempty"`
}

// --- Responses (device → host, correlated) ---

// Result is the generic acknowledgement for action and configuration commands.
type Result struct {
	Success bool   `cbor:"success"`
	Error   string `cbor:"error,omitempty"`
}

type GetInfoResponse struct {
	Node            NodeInfo `cbor:"node_info"`
	FirmwareVersion string   `cbor:"firmware_version,omitempty"`
	ProtocolVersion string   `cbor:"protocol_version,omitempty"`
	MeshVersion     uint32   `cbor:"mesh_version,omitempty"`
	NeighborCount   uint32   `cbor:"neighbor_count,omitempty"`
	RouteCount      uint32   `cbor:"route_count,omitempty"`
	UptimeMs        uint64   `cbor:"uptime_ms,omitempty"`
}

type GetGPSResponse struct {
	Position   GPSCoordinate `cbor:"position"`
	HasFix     bool          `cbor:"has_fix,omitempty"`
	Satellites uint32        `cbor:"satellites,omitempty"`
	HDOP       float64       `cbor:"hdop,omitempty"`
}

type GetNeighborsResponse struct {
	Neighbors []NodeInfo `cbor:"neighbors,omitempty"`
}

type GetRoutesResponse struct {
	Routes []RouteEntry `cbor:"routes,omitempty"`
}

type GetRosterResponse struct {
	Roster []RosterEntry `cbor:"roster,omitempty"`
}

type GetStatsResponse struct {
	MessagesSent      uint64 `cbor:"messages_sent,omitempty"`
	MessagesReceived  uint64 `cbor:"messages_received,omitempty"`
	MessagesForwarded uint64 `cbor:"messages_forwarded,omitempty"`
	MessagesDropped   uint64 `cbor:"messages_dropped,omitempty"`
	RouteDiscoveries  uint64 `cbor:"route_discoveries,omitempty"`
	RouteErrors       uint64 `cbor:"route_errors,omitempty"`
	MeshVersion       uint32 `cbor:"mesh_version,omitempty"`
	UptimeMs          uint64 `cbor:"uptime_ms,omitempty"`
}

// --- Events (device → host, unsolicited) ---

type MessageReceivedEvent struct {
	Source    string          `cbor:"source"`
	Text      string          `cbor:"text"`
	Priority  MessagePriority `cbor:"priority,omitempty"`
	RSSI      int32           `cbor:"rssi,omitempty"`
	Timestamp uint64          `cbor:"timestamp,omitempty"`
}

type GPSReceivedEvent struct {
	Source   string        `cbor:"source"`
	Position GPSCoordinate `cbor:"position"`
	RSSI     int32         `cbor:"rssi,omitempty"`
}

type NeighborChangedEvent struct {
	Node   NodeInfo `cbor:"node"`
	Joined bool     `cbor:"joined"`
}

type EmergencyReceivedEvent struct {
	Source      string         `cbor:"source"`
	Type        EmergencyType  `cbor:"emergency_type,omitempty"`
	Description string         `cbor:"description,omitempty"`
	Position    *GPSCoordinate `cbor:"position,omitempty"`
	RSSI        int32          `cbor:"rssi,omitempty"`
}

type LogEvent struct {
	Level     uint32 `cbor:"level,omitempty"`
	Message   string `cbor:"message"`
	Timestamp uint64 `cbor:"timestamp,omitempty"`
}

// FromDevice is the inbound envelope. Exactly one payload field is non-nil.
//
// RequestID correlates a response to the command that triggered it. Whether
// a given FromDevice is a response or an event is determined structurally by
// the correlation engine, not by RequestID alone: an ID that matches no
// pending request is treated as an event or dropped.
type FromDevice struct {
	RequestID uint32 `cbor:"request_id,omitempty"`

	Result    *Result               `cbor:"result,omitempty"`
	Info      *GetInfoResponse      `cbor:"info,omitempty"`
	GPS       *GetGPSResponse       `cbor:"gps,omitempty"`
	Neighbors *GetNeighborsResponse `cbor:"neighbors,omitempty"`
	Routes    *GetRoutesResponse    `cbor:"routes,omitempty"`
	Roster    *GetRosterResponse    `cbor:"roster,omitempty"`
	Stats     *GetStatsResponse     `cbor:"stats,omitempty"`

	MessageReceived   *MessageReceivedEvent   `cbor:"message_received,omitempty"`
	GPSReceived       *GPSReceivedEvent       `cbor:"gps_received,omitempty"`
	NeighborChanged   *NeighborChangedEvent   `cbor:"neighbor_changed,omitempty"`
	EmergencyReceived *EmergencyReceivedEvent `cbor:"emergency_received,omitempty"`
	Log               *LogEvent               `cbor:"log,omitempty"`
}

// Packet is the top-level envelope carried by one SLIP frame.
type Packet struct {
	PacketID   uint32      `cbor:"packet_id,omitempty"`
	ToDevice   *ToDevice   `cbor:"to_device,omitempty"`
	FromDevice *FromDevice `cbor:"from_device,omitempty"`
}
