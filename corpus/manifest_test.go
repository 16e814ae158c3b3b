package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/rirgen/scenario"
)

func TestIdentifiers(t *testing.T) {
	assert.Equal(t, "medium-Room007", RoomID("medium-", 7))
	assert.Equal(t, "medium-Room007-00042", RIRID("medium-", 7, 42))
	assert.Equal(t, "large-Room123-00001", RIRID("large-", 123, 1))
}

func TestWavePath(t *testing.T) {
	room := scenario.Room{Index: 7}
	got := WavePath("/data/out", room, 42)
	assert.Equal(t, filepath.Join("/data/out", "Room007", "Room007-00042.wav"), got)
}

func TestFormatRoomInfo(t *testing.T) {
	room := scenario.Room{
		Index:      7,
		Dim:        scenario.Vec3{X: 10, Y: 20.5, Z: 3},
		Absorption: 0.45,
		Mic:        scenario.Vec3{X: 1.234, Y: 2, Z: 1.5},
	}
	// Every numeric field carries exactly 2 decimals.
	assert.Equal(t, "Room007 10.00 20.50 3.00 1.23 2.00 1.50 0.45\n", FormatRoomInfo(room))
}

func TestRIRRecordFormat(t *testing.T) {
	room := scenario.Room{Index: 7}
	rec := NewRIRRecord("medium-", room, 42, "/out/Room007/Room007-00042.wav")
	assert.Equal(t,
		"--rir-id medium-Room007-00042 --room-id medium-Room007 /out/Room007/Room007-00042.wav\n",
		rec.Format())
}

func TestManifestAppendAndClose(t *testing.T) {
	dir := t.TempDir()
	m, err := OpenManifest(dir)
	require.NoError(t, err)

	room := scenario.Room{Index: 1, Dim: scenario.Vec3{X: 10, Y: 10, Z: 3}, Absorption: 0.5}
	require.NoError(t, m.AppendRoom(room))
	require.NoError(t, m.AppendRIR(NewRIRRecord("t-", room, 1, "/x.wav")))
	require.NoError(t, m.AppendRIR(NewRIRRecord("t-", room, 2, "/y.wav")))
	require.NoError(t, m.Close())

	assert.Equal(t, 1, m.Rooms())
	assert.Equal(t, 2, m.RIRs())

	roomInfo, err := os.ReadFile(filepath.Join(dir, RoomInfoFile))
	require.NoError(t, err)
	assert.Len(t, nonEmptyLines(string(roomInfo)), 1)

	rirList, err := os.ReadFile(filepath.Join(dir, RIRListFile))
	require.NoError(t, err)
	lines := nonEmptyLines(string(rirList))
	require.Len(t, lines, 2)
	for _, line := range lines {
		fields := strings.Fields(line)
		require.Len(t, fields, 5)
		assert.Equal(t, "--rir-id", fields[0])
		assert.Equal(t, "--room-id", fields[2])
	}
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
