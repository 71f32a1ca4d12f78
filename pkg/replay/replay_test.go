package replay

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/picogrid/volley-simulations/pkg/engine"
	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/intent"
	"github.com/picogrid/volley-simulations/pkg/logger"
	"github.com/picogrid/volley-simulations/pkg/world"
)

const tick = 1.0 / 60.0

func quiet() logger.Logger {
	return logger.NewWithConfig(logger.Config{Level: logger.FatalLevel, Writer: io.Discard, NoColor: true})
}

// record runs ticks from a seeded world, dragging one player on tick 10.
func record(t *testing.T, ticks int) (*engine.Context, Recording) {
	t.Helper()
	ws, err := world.New(world.WithSeed(11))
	if err != nil {
		t.Fatalf("Failed to create world: %v", err)
	}
	eng := engine.New(engine.DefaultConfig(), quiet())
	rec := NewRecorder(ws, eng.Config)

	drag := world.PlayerID(geometry.Away, world.Outside1)
	for i := 0; i < ticks; i++ {
		var human []intent.Intent
		if i == 10 {
			human = []intent.Intent{intent.Human(ws.Tick, drag, intent.Action{Kind: intent.MoveTo, Target: geometry.V2(0.3, 0.3)}, "drag")}
		}
		res, err := rec.Step(eng, ws, human, tick)
		if err != nil {
			t.Fatalf("Failed to record tick %d: %v", i, err)
		}
		ws = res.World
	}
	if rec.Len() != ticks {
		t.Fatalf("Expected %d frames, got %d", ticks, rec.Len())
	}
	return eng, rec.Recording()
}

func TestVerifyRecordedRun(t *testing.T) {
	eng, rec := record(t, 240)

	report, err := Verify(context.Background(), eng, rec)
	if err != nil {
		t.Fatalf("Expected verification to pass, got %v", err)
	}
	if report.Frames != 240 {
		t.Errorf("Expected 240 verified frames, got %d", report.Frames)
	}
	if report.Final.Tick != 240 {
		t.Errorf("Expected final tick 240, got %d", report.Final.Tick)
	}
	if len(rec.Frames[10].Human) != 1 {
		t.Errorf("Expected the drag to be recorded on frame 10, got %d intents", len(rec.Frames[10].Human))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	eng, rec := record(t, 90)

	var buf bytes.Buffer
	if err := Save(&buf, rec); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 91 {
		t.Errorf("Expected 91 lines, got %d", lines)
	}

	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if loaded.Header.ID != rec.Header.ID {
		t.Errorf("Expected id %s, got %s", rec.Header.ID, loaded.Header.ID)
	}
	if !world.Equal(loaded.Header.World, rec.Header.World) {
		t.Error("Expected the initial world to survive the round trip")
	}
	if len(loaded.Frames) != len(rec.Frames) {
		t.Fatalf("Expected %d frames, got %d", len(rec.Frames), len(loaded.Frames))
	}
	if _, err := Verify(context.Background(), eng, loaded); err != nil {
		t.Errorf("Expected the loaded recording to verify, got %v", err)
	}
}

func TestSaveFileLoadFile(t *testing.T) {
	_, rec := record(t, 30)
	path := filepath.Join(t.TempDir(), "replays", "rally.jsonl")

	if err := SaveFile(path, rec); err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("Failed to load file: %v", err)
	}
	if len(loaded.Frames) != 30 {
		t.Errorf("Expected 30 frames, got %d", len(loaded.Frames))
	}
}

func TestVerifyDetectsDivergence(t *testing.T) {
	eng, rec := record(t, 60)
	rec.Frames[42].Fingerprint ^= 1

	report, err := Verify(context.Background(), eng, rec)
	if !errors.Is(err, ErrDiverged) {
		t.Fatalf("Expected ErrDiverged, got %v", err)
	}
	if report.Frames != 42 {
		t.Errorf("Expected 42 matching frames before divergence, got %d", report.Frames)
	}
}

func TestVerifyDetectsChangedInput(t *testing.T) {
	eng, rec := record(t, 60)
	rec.Frames[10].Human = nil

	if _, err := Verify(context.Background(), eng, rec); !errors.Is(err, ErrDiverged) {
		t.Errorf("Expected ErrDiverged after dropping the drag, got %v", err)
	}
}

func TestVerifyHonorsCancellation(t *testing.T) {
	eng, rec := record(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Verify(ctx, eng, rec); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not json", "hello\n"},
		{"wrong version", `{"version":99}` + "\n"},
		{"bad frame", `{"version":1}` + "\n" + `{"tick":"x"}` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tt.input)); !errors.Is(err, ErrFormat) {
				t.Errorf("Expected ErrFormat, got %v", err)
			}
		})
	}
}
