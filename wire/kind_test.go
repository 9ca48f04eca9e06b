package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromDeviceKind(t *testing.T) {
	tests := []struct {
		name    string
		fd      *FromDevice
		kind    PayloadKind
		isEvent bool
	}{
		{"none", &FromDevice{RequestID: 1}, KindNone, false},
		{"result", &FromDevice{Result: &Result{Success: true}}, KindResult, false},
		{"info", &FromDevice{Info: &GetInfoResponse{}}, KindInfo, false},
		{"gps", &FromDevice{GPS: &GetGPSResponse{}}, KindGPS, false},
		{"neighbors", &FromDevice{Neighbors: &GetNeighborsResponse{}}, KindNeighbors, false},
		{"routes", &FromDevice{Routes: &GetRoutesResponse{}}, KindRoutes, false},
		{"roster", &FromDevice{Roster: &GetRosterResponse{}}, KindRoster, false},
		{"stats", &FromDevice{Stats: &GetStatsResponse{}}, KindStats, false},
		{"message event", &FromDevice{MessageReceived: &MessageReceivedEvent{}}, KindMessageEvent, true},
		{"gps event", &FromDevice{GPSReceived: &GPSReceivedEvent{}}, KindGPSEvent, true},
		{"neighbor event", &FromDevice{NeighborChanged: &NeighborChangedEvent{}}, KindNeighborEvent, true},
		{"emergency event", &FromDevice{EmergencyReceived: &EmergencyReceivedEvent{}}, KindEmergencyEvent, true},
		{"log event", &FromDevice{Log: &LogEvent{Message: "boot"}}, KindLogEvent, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.kind, tt.fd.Kind())
			require.Equal(t, tt.isEvent, tt.fd.Kind().IsEvent())
		})
	}
}

func TestPayloadKindString(t *testing.T) {
	require := require.New(t)

	require.Equal("none", KindNone.String())
	require.Equal("result", KindResult.String())
	require.Equal("message-received", KindMessageEvent.String())
	require.Equal("unknown", PayloadKind(99).String())
}
