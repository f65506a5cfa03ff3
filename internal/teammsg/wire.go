// Package teammsg implements SPL team-message receive/transmit and the
// embedded NTP clock-sync exchange (§4.3). The wire codec follows the same
// manual binary.LittleEndian framing internal/gamecontroller uses, grounded
// on the same iamvalenciia ipc.protocol.go shape; the vendor payload is a
// tagged-section list so unknown tags can be skipped without understanding
// them (§4.3 "attempt each vendor layout in turn").
package teammsg

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/hulks-go/splbrain/internal/spltypes"
)

const (
	headerMagic     = "SPL "
	protocolVersion = 8
)

// VendorTag discriminates a vendor payload section.
type VendorTag uint8

const (
	VendorNone VendorTag = iota
	VendorHULKs
	VendorNTPRequest
	VendorNTPResponse
)

// Prelude is the fixed SPL standard message header common to every frame.
type Prelude struct {
	PlayerNumber uint8
	TeamNumber   uint8
	Fallen       uint8
	PoseX        float32
	PoseY        float32
	PoseTheta    float32
	BallAge      float32 // seconds since last seen, negative if never seen
	BallX        float32
	BallY        float32
	BallVelX     float32
	BallVelY     float32
}

// NTPRequest is one outstanding clock-sync probe (§4.3).
type NTPRequest struct {
	Origination uint32 // ms, sender's local clock
}

// NTPResponse answers a previously buffered NTPRequest.
type NTPResponse struct {
	RequesterOrigination uint32 // echoed back unchanged
	Receipt               uint32 // ms, responder's local clock on receipt
	ResponseOrigination    uint32 // ms, responder's local clock on send
}

// Frame is a fully decoded incoming SPL team message.
type Frame struct {
	Prelude
	NTPRequest  *NTPRequest
	NTPResponse *NTPResponse
	RoleAssignments [spltypes.MaxPlayers + 1]spltypes.Role
	TimeToReachBall float32
	TimeToReachBallStriker float32
	CurrentlyPerformingRole uint8
}

// Decode parses a raw datagram (§4.3 "verify magic and size; parse the
// fixed prelude; then attempt each vendor layout in turn").
func Decode(raw []byte) (*Frame, error) {
	r := bytes.NewReader(raw)

	var magic [4]byte
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("teammsg: short header: %w", err)
	}
	if string(magic[:]) != headerMagic {
		return nil, fmt.Errorf("teammsg: bad magic %q", magic)
	}

	var version uint8
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("teammsg: short version: %w", err)
	}
	if version != protocolVersion {
		return nil, fmt.Errorf("teammsg: version mismatch: got %d, want %d", version, protocolVersion)
	}

	var f Frame
	if err := binary.Read(r, binary.LittleEndian, &f.Prelude); err != nil {
		return nil, fmt.Errorf("teammsg: decode prelude: %w", err)
	}

	var dataSize uint16
	if err := binary.Read(r, binary.LittleEndian, &dataSize); err != nil {
		return nil, fmt.Errorf("teammsg: decode data size: %w", err)
	}

	for r.Len() > 0 {
		var tag uint8
		if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
			break
		}
		var length uint16
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			break
		}
		section := make([]byte, length)
		if n, _ := r.Read(section); n != int(length) {
			return nil, fmt.Errorf("teammsg: truncated section for tag %d", tag)
		}

		switch VendorTag(tag) {
		case VendorHULKs:
			if err := decodeHULKs(section, &f); err != nil {
				return nil, err
			}
		case VendorNTPRequest:
			sr := bytes.NewReader(section)
			var req NTPRequest
			if err := binary.Read(sr, binary.LittleEndian, &req); err == nil {
				f.NTPRequest = &req
			}
		case VendorNTPResponse:
			sr := bytes.NewReader(section)
			var resp NTPResponse
			if err := binary.Read(sr, binary.LittleEndian, &resp); err == nil {
				f.NTPResponse = &resp
			}
		default:
			// Unknown tag: already consumed via length, simply skipped.
		}
	}

	return &f, nil
}

func decodeHULKs(section []byte, f *Frame) error {
	r := bytes.NewReader(section)
	for i := range f.RoleAssignments {
		var role uint8
		if err := binary.Read(r, binary.LittleEndian, &role); err != nil {
			return fmt.Errorf("teammsg: decode role assignment %d: %w", i, err)
		}
		f.RoleAssignments[i] = spltypes.Role(role)
	}
	if err := binary.Read(r, binary.LittleEndian, &f.TimeToReachBall); err != nil {
		return fmt.Errorf("teammsg: decode timeToReachBall: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &f.TimeToReachBallStriker); err != nil {
		return fmt.Errorf("teammsg: decode timeToReachBallStriker: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &f.CurrentlyPerformingRole); err != nil {
		return fmt.Errorf("teammsg: decode currentlyPerformingRole: %w", err)
	}
	return nil
}

// Encode serializes an outgoing frame (§4.3 "Transmit path").
func Encode(p Prelude, hulks *Frame, ntpReq *NTPRequest, ntpResp *NTPResponse) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteString(headerMagic)
	if err := binary.Write(buf, binary.LittleEndian, uint8(protocolVersion)); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, p); err != nil {
		return nil, fmt.Errorf("teammsg: encode prelude: %w", err)
	}

	sections := &bytes.Buffer{}
	if hulks != nil {
		section := &bytes.Buffer{}
		for _, role := range hulks.RoleAssignments {
			binary.Write(section, binary.LittleEndian, uint8(role))
		}
		binary.Write(section, binary.LittleEndian, hulks.TimeToReachBall)
		binary.Write(section, binary.LittleEndian, hulks.TimeToReachBallStriker)
		binary.Write(section, binary.LittleEndian, hulks.CurrentlyPerformingRole)
		writeSection(sections, VendorHULKs, section.Bytes())
	}
	if ntpReq != nil {
		section := &bytes.Buffer{}
		binary.Write(section, binary.LittleEndian, *ntpReq)
		writeSection(sections, VendorNTPRequest, section.Bytes())
	}
	if ntpResp != nil {
		section := &bytes.Buffer{}
		binary.Write(section, binary.LittleEndian, *ntpResp)
		writeSection(sections, VendorNTPResponse, section.Bytes())
	}

	if err := binary.Write(buf, binary.LittleEndian, uint16(sections.Len())); err != nil {
		return nil, err
	}
	buf.Write(sections.Bytes())

	return buf.Bytes(), nil
}

func writeSection(dst *bytes.Buffer, tag VendorTag, payload []byte) {
	binary.Write(dst, binary.LittleEndian, uint8(tag))
	binary.Write(dst, binary.LittleEndian, uint16(len(payload)))
	dst.Write(payload)
}
