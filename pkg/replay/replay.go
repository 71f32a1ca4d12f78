// Package replay records engine runs as an initial world plus per-tick
// inputs and fingerprints, and re-runs recordings to check determinism.
package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/picogrid/volley-simulations/pkg/engine"
	"github.com/picogrid/volley-simulations/pkg/intent"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// FormatVersion is written into every header.
const FormatVersion = 1

// maxLine bounds one JSON line; a header carries a full world.
const maxLine = 8 << 20

var (
	// ErrDiverged is returned by Verify when a re-run fingerprint differs.
	ErrDiverged = errors.New("replay diverged")
	// ErrFormat is returned for files Load cannot read.
	ErrFormat = errors.New("invalid replay file")
)

// Header is the first line of a replay file.
type Header struct {
	Version   int              `json:"version"`
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"createdAt"`
	Engine    engine.Config    `json:"engine"`
	World     world.WorldState `json:"world"`
}

// Frame is one recorded tick: its inputs and the fingerprint of the world it
// produced.
type Frame struct {
	Tick        uint64          `json:"tick"`
	Dt          float64         `json:"dt"`
	Human       []intent.Intent `json:"human,omitempty"`
	Fingerprint uint64          `json:"fingerprint"`
}

// Recording is a header and its frames.
type Recording struct {
	Header Header  `json:"header"`
	Frames []Frame `json:"frames"`
}

// Recorder accumulates frames for one run. It is not safe for concurrent
// use.
type Recorder struct {
	rec Recording
}

// NewRecorder starts a recording of runs from initial under cfg.
func NewRecorder(initial world.WorldState, cfg engine.Config) *Recorder {
	return &Recorder{rec: Recording{Header: Header{
		Version:   FormatVersion,
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Engine:    cfg,
		World:     initial.Clone(),
	}}}
}

// Record appends the tick that turned the previous world into next.
func (r *Recorder) Record(dt float64, human []intent.Intent, next world.WorldState) error {
	fp, err := next.Fingerprint()
	if err != nil {
		return fmt.Errorf("fingerprint tick %d: %w", next.Tick, err)
	}
	var h []intent.Intent
	if len(human) > 0 {
		h = make([]intent.Intent, len(human))
		copy(h, human)
	}
	r.rec.Frames = append(r.rec.Frames, Frame{Tick: next.Tick, Dt: dt, Human: h, Fingerprint: fp})
	return nil
}

// Len is the number of recorded frames.
func (r *Recorder) Len() int {
	return len(r.rec.Frames)
}

// Recording returns a copy of what has been recorded so far.
func (r *Recorder) Recording() Recording {
	out := r.rec
	out.Frames = make([]Frame, len(r.rec.Frames))
	copy(out.Frames, r.rec.Frames)
	return out
}

// Step runs one engine tick and records it.
func (r *Recorder) Step(eng *engine.Context, ws world.WorldState, human []intent.Intent, dt float64) (engine.Result, error) {
	res := eng.Step(ws, human, dt)
	return res, r.Record(dt, human, res.World)
}

// Save writes rec as JSON lines: the header, then one frame per line.
func Save(w io.Writer, rec Recording) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(rec.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, f := range rec.Frames {
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("write frame %d: %w", f.Tick, err)
		}
	}
	return nil
}

// Load reads a recording written by Save.
func Load(r io.Reader) (Recording, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	var rec Recording
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return Recording{}, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		return Recording{}, fmt.Errorf("%w: empty file", ErrFormat)
	}
	if err := json.Unmarshal(sc.Bytes(), &rec.Header); err != nil {
		return Recording{}, fmt.Errorf("%w: header: %v", ErrFormat, err)
	}
	if rec.Header.Version != FormatVersion {
		return Recording{}, fmt.Errorf("%w: unsupported version %d", ErrFormat, rec.Header.Version)
	}

	line := 1
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var f Frame
		if err := json.Unmarshal(sc.Bytes(), &f); err != nil {
			return Recording{}, fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
		}
		rec.Frames = append(rec.Frames, f)
	}
	if err := sc.Err(); err != nil {
		return Recording{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return rec, nil
}

// SaveFile writes rec to path, creating parent directories.
func SaveFile(path string, rec Recording) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating replay file: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := Save(w, rec); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("error writing replay file: %w", err)
	}
	return f.Close()
}

// LoadFile reads a recording from path.
func LoadFile(path string) (Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return Recording{}, fmt.Errorf("error opening replay file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Report summarizes a verification.
type Report struct {
	Frames int              `json:"frames"`
	Final  world.WorldState `json:"final"`
}

// Verify re-runs rec from its initial world with eng and compares every
// tick's fingerprint. The first mismatch is returned wrapped in ErrDiverged.
func Verify(ctx context.Context, eng *engine.Context, rec Recording) (Report, error) {
	ws := rec.Header.World.Clone()
	report := Report{Final: ws}
	for i, f := range rec.Frames {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		ws = eng.Step(ws, f.Human, f.Dt).World
		fp, err := ws.Fingerprint()
		if err != nil {
			return report, fmt.Errorf("fingerprint tick %d: %w", ws.Tick, err)
		}
		if fp != f.Fingerprint {
			return report, fmt.Errorf("%w: frame %d (tick %d): recorded %016x, got %016x", ErrDiverged, i, f.Tick, f.Fingerprint, fp)
		}
		report.Frames++
		report.Final = ws
	}
	return report, nil
}
