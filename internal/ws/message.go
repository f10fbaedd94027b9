package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tvandenbrink/tafel-racer/internal/errors"
	"github.com/tvandenbrink/tafel-racer/internal/game"
	"github.com/tvandenbrink/tafel-racer/internal/services"
)

type MessageType string

const (
	// Client -> Server
	MessageTypeStart           MessageType = "start"
	MessageTypeReplay          MessageType = "replay"
	MessageTypeBackToSettings  MessageType = "back_to_settings"
	MessageTypeStatistics      MessageType = "statistics"
	MessageTypeResetStatistics MessageType = "reset_statistics"
	MessageTypeConfigure       MessageType = "configure"
	MessageTypeLeft            MessageType = "left"
	MessageTypeRight           MessageType = "right"
	MessageTypeSelectLane      MessageType = "select_lane"
	MessageTypeBoost           MessageType = "boost"
	MessageTypePing            MessageType = "ping"

	// Server -> Client
	MessageTypeSnapshot MessageType = "snapshot"
	MessageTypeError    MessageType = "error"
	MessageTypePong     MessageType = "pong"
)

type Message struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload,omitempty"`
}

// incoming defers payload decoding until the type is known.
type incoming struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type SelectLanePayload struct {
	Lane int `json:"lane"`
}

type BoostPayload struct {
	Held bool `json:"held"`
}

type ConfigurePayload struct {
	Player              string  `json:"player"`
	Lanes               int     `json:"lanes"`
	CarSpeed            int     `json:"car_speed"`
	GateIntervalSeconds float64 `json:"gate_interval_seconds"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SnapshotPayload carries the frame and, when the last command was rejected,
// the reason.
type SnapshotPayload struct {
	game.Snapshot
	Error *ErrorPayload `json:"error,omitempty"`
}

var simpleCommands = map[MessageType]services.CommandType{
	MessageTypeStart:           services.CommandStart,
	MessageTypeReplay:          services.CommandReplay,
	MessageTypeBackToSettings:  services.CommandBackToSettings,
	MessageTypeStatistics:      services.CommandStatistics,
	MessageTypeResetStatistics: services.CommandResetStatistics,
	MessageTypeLeft:            services.CommandLeft,
	MessageTypeRight:           services.CommandRight,
}

// Decode parses a client message into a session command. ping is set for
// keepalive messages, which carry no command.
func Decode(data []byte) (cmd services.Command, ping bool, err error) {
	var msg incoming
	if err := json.Unmarshal(data, &msg); err != nil {
		return services.Command{}, false, errors.NewBadRequestError("invalid message format")
	}
	if msg.Type == MessageTypePing {
		return services.Command{}, true, nil
	}
	cmd, err = msg.command()
	return cmd, false, err
}

func (msg incoming) command() (services.Command, error) {
	if t, ok := simpleCommands[msg.Type]; ok {
		return services.Command{Type: t}, nil
	}

	switch msg.Type {
	case MessageTypeSelectLane:
		var p SelectLanePayload
		if err := decodePayload(msg, &p); err != nil {
			return services.Command{}, err
		}
		return services.Command{Type: services.CommandSelectLane, Lane: p.Lane}, nil
	case MessageTypeBoost:
		var p BoostPayload
		if err := decodePayload(msg, &p); err != nil {
			return services.Command{}, err
		}
		return services.Command{Type: services.CommandBoost, Held: p.Held}, nil
	case MessageTypeConfigure:
		var p ConfigurePayload
		if err := decodePayload(msg, &p); err != nil {
			return services.Command{}, err
		}
		return services.Command{Type: services.CommandConfigure, Settings: game.Settings{
			Player:       p.Player,
			Lanes:        p.Lanes,
			CarSpeed:     p.CarSpeed,
			GateInterval: time.Duration(p.GateIntervalSeconds * float64(time.Second)),
		}}, nil
	default:
		return services.Command{}, errors.NewBadRequestError(fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

func decodePayload(msg incoming, dst any) error {
	if len(msg.Payload) == 0 {
		return errors.NewBadRequestError(fmt.Sprintf("%s requires a payload", msg.Type))
	}
	if err := json.Unmarshal(msg.Payload, dst); err != nil {
		return errors.NewBadRequestError(fmt.Sprintf("invalid %s payload", msg.Type))
	}
	return nil
}

func errorPayload(err error) *ErrorPayload {
	if err == nil {
		return nil
	}
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.NewInternalError(err)
	}
	return &ErrorPayload{Code: appErr.Code, Message: appErr.Message}
}
