package wire

// PayloadKind identifies which payload variant of a FromDevice is populated.
type PayloadKind uint32

const (
	// KindNone indicates no payload field is populated.
	KindNone PayloadKind = iota

	// Response kinds, matched to a pending request by the correlation engine.
	KindResult
	KindInfo
	KindGPS
	KindNeighbors
	KindRoutes
	KindRoster
	KindStats

	// Event kinds, delivered to registered handlers.
	KindMessageEvent
	KindGPSEvent
	KindNeighborEvent
	KindEmergencyEvent
	KindLogEvent
)

// IsEvent reports whether k is an unsolicited event kind, as opposed to a
// response kind.
func (k PayloadKind) IsEvent() bool {
	switch k {
	case KindMessageEvent, KindGPSEvent, KindNeighborEvent, KindEmergencyEvent, KindLogEvent:
		return true
	default:
		return false
	}
}

// String returns a string representation of the payload kind.
func (k PayloadKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindResult:
		return "result"
	case KindInfo:
		return "info"
	case KindGPS:
		return "gps"
	case KindNeighbors:
		return "neighbors"
	case KindRoutes:
		return "routes"
	case KindRoster:
		return "roster"
	case KindStats:
		return "stats"
	case KindMessageEvent:
		return "message-received"
	case KindGPSEvent:
		return "gps-received"
	case KindNeighborEvent:
		return "neighbor-changed"
	case KindEmergencyEvent:
		return "emergency-received"
	case KindLogEvent:
		return "log"
	default:
		return "unknown"
	}
}

// Kind returns the populated payload variant of fd.
//
// The variants are mutually exclusive by construction; if a malformed
// envelope populates more than one, the first in declaration order wins.
func (fd *FromDevice) Kind() PayloadKind {
	switch {
	case fd.Result != nil:
		return KindResult
	case fd.Info != nil:
		return KindInfo
	case fd.GPS != nil:
		return KindGPS
	case fd.Neighbors != nil:
		return KindNeighbors
	case fd.Routes != nil:
		return KindRoutes
	case fd.Roster != nil:
		return KindRoster
	case fd.Stats != nil:
		return KindStats
	case fd.MessageReceived != nil:
		return KindMessageEvent
	case fd.GPSReceived != nil:
		return KindGPSEvent
	case fd.NeighborChanged != nil:
		return KindNeighborEvent
	case fd.EmergencyReceived != nil:
		return KindEmergencyEvent
	case fd.Log != nil:
		return KindLogEvent
	default:
		return KindNone
	}
}
