package corpus

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/rirgen/scenario"
)

// Manifest file names inside the output directory.
const (
	RoomInfoFile = "room_info"
	RIRListFile  = "rir_list"
)

// RoomID returns the prefixed room identifier, e.g. "medium-Room007".
func RoomID(prefix string, roomIndex int) string {
	return fmt.Sprintf("%sRoom%03d", prefix, roomIndex)
}

// RIRID returns the prefixed RIR identifier, e.g. "medium-Room007-00042".
func RIRID(prefix string, roomIndex, rirIndex int) string {
	return fmt.Sprintf("%s-%05d", RoomID(prefix, roomIndex), rirIndex)
}

// WavePath returns the waveform path for one RIR under the output
// directory, e.g. "<out>/Room007/Room007-00042.wav".
func WavePath(outDir string, room scenario.Room, rirIndex int) string {
	name := room.Name()
	return filepath.Join(outDir, name, fmt.Sprintf("%s-%05d.wav", name, rirIndex))
}

// RIRRecord is one rir_list row: a generated waveform with its stable
// identifiers. The wire format is flag-style text; Format is the single
// place that serializes it.
type RIRRecord struct {
	RIRID  string
	RoomID string
	Path   string
}

// NewRIRRecord builds the record for one RIR of a room.
func NewRIRRecord(prefix string, room scenario.Room, rirIndex int, path string) RIRRecord {
	return RIRRecord{
		RIRID:  RIRID(prefix, room.Index, rirIndex),
		RoomID: RoomID(prefix, room.Index),
		Path:   path,
	}
}

// Format serializes the record as a rir_list line.
func (r RIRRecord) Format() string {
	return fmt.Sprintf("--rir-id %s --room-id %s %s\n", r.RIRID, r.RoomID, r.Path)
}

// FormatRoomInfo serializes a room_info line: name, dimensions, receiver
// position and absorption, every numeric field with exactly 2 decimals.
func FormatRoomInfo(r scenario.Room) string {
	return fmt.Sprintf("%s %.2f %.2f %.2f %.2f %.2f %.2f %.2f\n",
		r.Name(), r.Dim.X, r.Dim.Y, r.Dim.Z, r.Mic.X, r.Mic.Y, r.Mic.Z, r.Absorption)
}

// Manifest owns the two append-only manifest files of a run. Both are
// opened once, written in generation order, and flushed on Close even
// when the run aborts mid-room.
type Manifest struct {
	roomInfo *os.File
	rirList  *os.File
	roomBuf  *bufio.Writer
	rirBuf   *bufio.Writer

	rooms int
	rirs  int
}

// OpenManifest creates the output directory and both manifest files,
// truncating any previous run's manifests.
func OpenManifest(outDir string) (*Manifest, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	roomInfo, err := os.Create(filepath.Join(outDir, RoomInfoFile))
	if err != nil {
		return nil, err
	}
	rirList, err := os.Create(filepath.Join(outDir, RIRListFile))
	if err != nil {
		roomInfo.Close()
		return nil, err
	}
	return &Manifest{
		roomInfo: roomInfo,
		rirList:  rirList,
		roomBuf:  bufio.NewWriter(roomInfo),
		rirBuf:   bufio.NewWriter(rirList),
	}, nil
}

// AppendRoom records one sampled room.
func (m *Manifest) AppendRoom(r scenario.Room) error {
	if _, err := m.roomBuf.WriteString(FormatRoomInfo(r)); err != nil {
		return fmt.Errorf("write room_info: %w", err)
	}
	m.rooms++
	return nil
}

// AppendRIR records one generated waveform.
func (m *Manifest) AppendRIR(rec RIRRecord) error {
	if _, err := m.rirBuf.WriteString(rec.Format()); err != nil {
		return fmt.Errorf("write rir_list: %w", err)
	}
	m.rirs++
	return nil
}

// Rooms returns the number of room_info lines written so far.
func (m *Manifest) Rooms() int { return m.rooms }

// RIRs returns the number of rir_list lines written so far.
func (m *Manifest) RIRs() int { return m.rirs }

// Close flushes and closes both manifest files, reporting the first
// failure.
func (m *Manifest) Close() error {
	var first error
	for _, step := range []func() error{
		m.roomBuf.Flush,
		m.rirBuf.Flush,
		m.roomInfo.Close,
		m.rirList.Close,
	} {
		if err := step(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
