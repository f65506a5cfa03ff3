// Package gamecontroller implements the referee UDP client (§4.2, §6): a
// fixed-size little-endian wire decoder for RoboCupGameControlData plus a
// reply encoder for RoboCupGameControlReturnData, matching the SPL standard
// layout the field's official GameController application speaks.
//
// No pack example decodes a fixed C-struct wire format; the closest analog
// (iamvalenciia's internal/ipc protocol.go) hand-rolls its own header with
// binary.LittleEndian.PutUint16/Uint32 rather than reaching for a struct-tag
// library, so the same manual-offset style is used here — justified in
// DESIGN.md as the one place encoding/binary is used directly rather than
// through a pack library, since no pack dependency does fixed-layout binary
// struct decoding.
package gamecontroller

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	headerMagic      = "RGme"
	returnHeaderMagic = "RGrt"
	protocolVersion  = 18

	maxPlayersPerTeam = 20
)

// WireGameState mirrors the wire state byte 0..4.
type WireGameState uint8

const (
	WireStateInitial WireGameState = iota
	WireStateReady
	WireStateSet
	WireStatePlaying
	WireStateFinished
)

// RobotInfo is one player's penalty bookkeeping inside a TeamInfo block.
type RobotInfo struct {
	Penalty             uint8
	SecsTillUnpenalised uint8
}

// TeamInfo is one of the two per-team blocks in RoboCupGameControlData.
type TeamInfo struct {
	TeamNumber    uint8
	FieldColor    uint8
	Score         uint8
	PenaltyShot   uint8
	SingleShots   uint16
	MessageBudget uint16
	Players       [maxPlayersPerTeam]RobotInfo
}

// Frame is the decoded RoboCupGameControlData datagram.
type Frame struct {
	PlayersPerTeam  uint8
	CompetitionType uint8
	GameType        uint8
	State           WireGameState
	FirstHalf       uint8
	KickingTeam     uint8
	GamePhase       uint8
	SetPlay         uint8
	SecsRemaining   int16
	SecondaryTime   int16
	Teams           [2]TeamInfo
}

// ReturnMessage enumerates RoboCupGameControlReturnData.Message.
type ReturnMessage uint8

const (
	ReturnAlive ReturnMessage = iota
	ReturnManPenalised
	ReturnManUnpenalised
)

// ReturnFrame is the encoded RoboCupGameControlReturnData reply.
type ReturnFrame struct {
	TeamNumber   uint8
	PlayerNumber uint8
	Message      ReturnMessage
	PoseX        float32 // mm
	PoseY        float32 // mm
	PoseTheta    float32 // rad
}

// Decode parses a raw datagram into a Frame, verifying the magic header and
// protocol version first (§4.2 "verifies the magic header and version").
func Decode(raw []byte) (*Frame, error) {
	r := bytes.NewReader(raw)

	var magic [4]byte
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("gamecontroller: short header: %w", err)
	}
	if string(magic[:]) != headerMagic {
		return nil, fmt.Errorf("gamecontroller: bad magic %q", magic)
	}

	var version uint8
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("gamecontroller: short version: %w", err)
	}
	if version != protocolVersion {
		return nil, fmt.Errorf("gamecontroller: version mismatch: got %d, want %d", version, protocolVersion)
	}

	var f Frame
	fields := []interface{}{
		&f.PlayersPerTeam, &f.CompetitionType, &f.GameType, &f.State,
		&f.FirstHalf, &f.KickingTeam, &f.GamePhase, &f.SetPlay,
		&f.SecsRemaining, &f.SecondaryTime,
	}
	for _, field := range fields {
		if err := binary.Read(r, binary.LittleEndian, field); err != nil {
			return nil, fmt.Errorf("gamecontroller: decode prelude: %w", err)
		}
	}
	for i := range f.Teams {
		if err := binary.Read(r, binary.LittleEndian, &f.Teams[i]); err != nil {
			return nil, fmt.Errorf("gamecontroller: decode team %d: %w", i, err)
		}
	}

	return &f, nil
}

// EncodeReturn serializes a reply datagram for transmission back to the
// referee application's last-seen sender endpoint (§4.2).
func EncodeReturn(f ReturnFrame) ([]byte, error) {
	buf := &bytes.Buffer{}
	if _, err := buf.WriteString(returnHeaderMagic); err != nil {
		return nil, fmt.Errorf("gamecontroller: write return magic: %w", err)
	}
	fields := []interface{}{
		uint8(protocolVersion), f.TeamNumber, f.PlayerNumber, uint8(f.Message),
		f.PoseX, f.PoseY, f.PoseTheta,
	}
	for _, field := range fields {
		if err := binary.Write(buf, binary.LittleEndian, field); err != nil {
			return nil, fmt.Errorf("gamecontroller: encode return: %w", err)
		}
	}
	return buf.Bytes(), nil
}
