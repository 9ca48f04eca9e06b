package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalCommand(t *testing.T) {
	require := require.New(t)

	pkt := &Packet{
		PacketID: 42,
		ToDevice: &ToDevice{
			SendMessage: &SendMessageRequest{
				Text:     "contact at grid 31U",
				Priority: PriorityHigh,
			},
		},
	}

	data, err := Marshal(pkt)
	require.NoError(err)
	require.NotEmpty(data)

	decoded, err := Unmarshal(data)
	require.NoError(err)
	require.Equal(pkt, decoded)
}

func TestMarshalUnmarshalResponse(t *testing.T) {
	require := require.New(t)

	pkt := &Packet{
		FromDevice: &FromDevice{
			RequestID: 42,
			Info: &GetInfoResponse{
				Node:            NodeInfo{NodeID: "alpha-1"},
				FirmwareVersion: "1.4.0",
				NeighborCount:   3,
			},
		},
	}

	data, err := Marshal(pkt)
	require.NoError(err)

	decoded, err := Unmarshal(data)
	require.NoError(err)
	require.Equal(pkt, decoded)
}

func TestMarshalUnmarshalEvent(t *testing.T) {
	require := require.New(t)

	pkt := &Packet{
		FromDevice: &FromDevice{
			EmergencyReceived: &EmergencyReceivedEvent{
				Source:      "bravo-2",
				Type:        EmergencyMedical,
				Description: "casualty",
				Position:    &GPSCoordinate{Latitude: 48.2, Longitude: 16.3},
				RSSI:        -97,
			},
		},
	}

	data, err := Marshal(pkt)
	require.NoError(err)

	decoded, err := Unmarshal(data)
	require.NoError(err)
	require.Equal(pkt, decoded)
	require.Equal(KindEmergencyEvent, decoded.FromDevice.Kind())
}

func TestMarshalDeterministic(t *testing.T) {
	require := require.New(t)

	pkt := &Packet{
		PacketID: 7,
		ToDevice: &ToDevice{Ping: &PingRequest{Destination: "charlie-3"}},
	}

	first, err := Marshal(pkt)
	require.NoError(err)
	second, err := Marshal(pkt)
	require.NoError(err)
	require.Equal(first, second)
}

func TestMarshalEmptyEnvelope(t *testing.T) {
	_, err := Marshal(&Packet{PacketID: 1})
	require.ErrorIs(t, err, ErrEmptyEnvelope)
}

func TestUnmarshalErrors(t *testing.T) {
	t.Run("Garbage", func(t *testing.T) {
		_, err := Unmarshal([]byte{0xFF, 0x00, 0x13})
		require.Error(t, err)
	})

	t.Run("Empty Envelope", func(t *testing.T) {
		data, err := encMode.Marshal(map[string]uint32{"packet_id": 9})
		require.NoError(t, err)

		_, err = Unmarshal(data)
		require.ErrorIs(t, err, ErrEmptyEnvelope)
	})
}
