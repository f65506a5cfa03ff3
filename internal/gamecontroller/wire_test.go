package gamecontroller

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFrame(t *testing.T, ownTeamNumber uint8) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	buf.WriteString(headerMagic)
	binary.Write(buf, binary.LittleEndian, uint8(protocolVersion))

	binary.Write(buf, binary.LittleEndian, uint8(7))              // playersPerTeam
	binary.Write(buf, binary.LittleEndian, uint8(0))              // competitionType
	binary.Write(buf, binary.LittleEndian, uint8(0))              // gameType
	binary.Write(buf, binary.LittleEndian, uint8(WireStatePlaying)) // state
	binary.Write(buf, binary.LittleEndian, uint8(1))              // firstHalf
	binary.Write(buf, binary.LittleEndian, ownTeamNumber)         // kickingTeam
	binary.Write(buf, binary.LittleEndian, uint8(0))              // gamePhase
	binary.Write(buf, binary.LittleEndian, uint8(0))              // setPlay
	binary.Write(buf, binary.LittleEndian, int16(600))            // secsRemaining
	binary.Write(buf, binary.LittleEndian, int16(0))              // secondaryTime

	team0 := TeamInfo{TeamNumber: ownTeamNumber, FieldColor: 1}
	team1 := TeamInfo{TeamNumber: ownTeamNumber + 1, FieldColor: 2}
	require.NoError(t, binary.Write(buf, binary.LittleEndian, team0))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, team1))

	return buf.Bytes()
}

func TestDecodeRoundTripsTeamAndState(t *testing.T) {
	raw := buildFrame(t, 5)

	f, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, WireStatePlaying, f.State)
	assert.Equal(t, uint8(5), f.Teams[0].TeamNumber)
	assert.Equal(t, uint8(6), f.Teams[1].TeamNumber)
	assert.Equal(t, int16(600), f.SecsRemaining)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	raw := buildFrame(t, 5)
	raw[0] = 'X'
	_, err := Decode(raw)
	assert.Error(t, err)
}

func TestEncodeReturnRoundTrips(t *testing.T) {
	raw, err := EncodeReturn(ReturnFrame{
		TeamNumber:   5,
		PlayerNumber: 2,
		Message:      ReturnManPenalised,
		PoseX:        100,
		PoseY:        -200,
		PoseTheta:    1.5,
	})
	require.NoError(t, err)
	assert.Equal(t, returnHeaderMagic, string(raw[:4]))
}
