package meshtak

import (
	"context"
	"errors"
	"fmt"

	"github.com/lorameshtak/go-meshtak/wire"
)

// Operations consumed by CLIs and examples. Each is a thin wrapper issuing
// one command through the correlation engine; the context deadline provides
// the per-call timeout override (the configured reply timeout still applies
// as an upper bound).

// GetInfo queries device information: node identity, firmware and protocol
// versions, and mesh counters.
func (c *Client) GetInfo(ctx context.Context) (*wire.GetInfoResponse, error) {
	rsp, err := c.sendCommand(ctx, &wire.ToDevice{GetInfo: &wire.GetInfoRequest{}})
	if err != nil {
		return nil, err
	}
	if rsp.Info == nil {
		return nil, replyKindErr(rsp)
	}

	return rsp.Info, nil
}

// GetGPS queries the current GPS position of the device.
func (c *Client) GetGPS(ctx context.Context) (*wire.GetGPSResponse, error) {
	rsp, err := c.sendCommand(ctx, &wire.ToDevice{GetGPS: &wire.GetGPSRequest{}})
	if err != nil {
		return nil, err
	}
	if rsp.GPS == nil {
		return nil, replyKindErr(rsp)
	}

	return rsp.GPS, nil
}

// GetNeighbors queries the list of directly connected neighbor nodes.
func (c *Client) GetNeighbors(ctx context.Context) ([]wire.NodeInfo, error) {
	rsp, err := c.sendCommand(ctx, &wire.ToDevice{GetNeighbors: &wire.GetNeighborsRequest{}})
	if err != nil {
		return nil, err
	}
	if rsp.Neighbors == nil {
		return nil, replyKindErr(rsp)
	}

	return rsp.Neighbors.Neighbors, nil
}

// GetRoutes queries the device routing table.
func (c *Client) GetRoutes(ctx context.Context) ([]wire.RouteEntry, error) {
	rsp, err := c.sendCommand(ctx, &wire.ToDevice{GetRoutes: &wire.GetRoutesRequest{}})
	if err != nil {
		return nil, err
	}
	if rsp.Routes == nil {
		return nil, replyKindErr(rsp)
	}

	return rsp.Routes.Routes, nil
}

// GetRoster queries the team roster: all known nodes in the mesh.
func (c *Client) GetRoster(ctx context.Context) ([]wire.RosterEntry, error) {
	rsp, err := c.sendCommand(ctx, &wire.ToDevice{GetRoster: &wire.GetRosterRequest{}})
	if err != nil {
		return nil, err
	}
	if rsp.Roster == nil {
		return nil, replyKindErr(rsp)
	}

	return rsp.Roster.Roster, nil
}

// GetStats queries device statistics: message counters and uptime.
func (c *Client) GetStats(ctx context.Context) (*wire.GetStatsResponse, error) {
	rsp, err := c.sendCommand(ctx, &wire.ToDevice{GetStats: &wire.GetStatsRequest{}})
	if err != nil {
		return nil, err
	}
	if rsp.Stats == nil {
		return nil, replyKindErr(rsp)
	}

	return rsp.Stats, nil
}

// SetGPS sets the device GPS position manually. When useStatic is true the
// position is persisted by the device and survives reboot.
func (c *Client) SetGPS(ctx context.Context, latitude, longitude, altitude float64, useStatic bool) error {
	cmd := &wire.ToDevice{
		SetGPS: &wire.SetGPSRequest{
			Position: wire.GPSCoordinate{
				Latitude:  latitude,
				Longitude: longitude,
				Altitude:  altitude,
			},
			UseStatic: useStatic,
		},
	}

	return c.sendResultCommand(ctx, cmd)
}

// SetNodeID sets the node ID. The device may require a restart afterwards.
func (c *Client) SetNodeID(ctx context.Context, nodeID string) error {
	if nodeID == "" {
		return errors.New("meshtak: node ID is empty")
	}

	return c.sendResultCommand(ctx, &wire.ToDevice{
		SetNodeID: &wire.SetNodeIDRequest{NodeID: nodeID},
	})
}

// SendGPS broadcasts the device's current GPS position to the mesh.
func (c *Client) SendGPS(ctx context.Context) error {
	return c.sendResultCommand(ctx, &wire.ToDevice{SendGPS: &wire.SendGPSRequest{}})
}

// SendEmergency broadcasts an emergency alert.
func (c *Client) SendEmergency(ctx context.Context, typ wire.EmergencyType, description string) error {
	return c.sendResultCommand(ctx, &wire.ToDevice{
		SendEmergency: &wire.SendEmergencyRequest{
			Type:        typ,
			Description: description,
		},
	})
}

// Ping pings a destination node.
func (c *Client) Ping(ctx context.Context, destination string) error {
	if destination == "" {
		return errors.New("meshtak: ping destination is empty")
	}

	return c.sendResultCommand(ctx, &wire.ToDevice{
		Ping: &wire.PingRequest{Destination: destination},
	})
}

// Discover triggers a network discovery round.
func (c *Client) Discover(ctx context.Context) error {
	return c.sendResultCommand(ctx, &wire.ToDevice{Discover: &wire.DiscoverRequest{}})
}

// Join joins the mesh network.
func (c *Client) Join(ctx context.Context) error {
	return c.sendResultCommand(ctx, &wire.ToDevice{Join: &wire.JoinRequest{}})
}

// sendResultCommand issues a command whose reply is a generic Result
// acknowledgement.
func (c *Client) sendResultCommand(ctx context.Context, cmd *wire.ToDevice) error {
	rsp, err := c.sendCommand(ctx, cmd)
	if err != nil {
		return err
	}

	return resultErr(rsp)
}

// resultErr converts a Result payload into an error. A reply without a
// Result payload is treated as a bare acknowledgement.
func resultErr(rsp *wire.FromDevice) error {
	res := rsp.Result
	if res == nil || res.Success {
		return nil
	}

	if res.Error != "" {
		return fmt.Errorf("%w: %s", ErrCommandFailed, res.Error)
	}

	return ErrCommandFailed
}

func replyKindErr(rsp *wire.FromDevice) error {
	if err := resultErr(rsp); err != nil {
		return err
	}

	return fmt.Errorf("%w: got %s", ErrUnexpectedReply, rsp.Kind())
}
