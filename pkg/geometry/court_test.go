package geometry

import (
	"errors"
	"math"
	"testing"
)

func TestMirrorIsItsOwnInverse(t *testing.T) {
	court := DefaultCourt()
	points := []Vec2{
		{0.1, 0.9},
		{0.5, 0.5},
		{0.83, 0.58},
		{-0.1, 1.05},
		{0.333333, 0.777777},
	}

	for _, p := range points {
		back := court.Mirror(court.Mirror(p))
		if !back.ApproxEqual(p) {
			t.Errorf("Expected mirror(mirror(%v)) == %v, got %v", p, p, back)
		}
		if court.SideOf(p) == court.SideOf(court.Mirror(p)) && p[1] != court.NetY {
			t.Errorf("Expected mirror of %v to switch sides", p)
		}
	}
}

func TestZoneCenters(t *testing.T) {
	court := DefaultCourt()

	tests := []struct {
		zone  int
		front bool
		left  bool
	}{
		{zone: 1, front: false, left: false},
		{zone: 2, front: true, left: false},
		{zone: 3, front: true},
		{zone: 4, front: true, left: true},
		{zone: 5, front: false, left: true},
		{zone: 6, front: false},
	}

	for _, tt := range tests {
		home, err := court.ZoneCenter(tt.zone, Home)
		if err != nil {
			t.Fatalf("zone %d: unexpected error %v", tt.zone, err)
		}
		if !court.OnSide(home, Home) {
			t.Errorf("zone %d: expected HOME centre on HOME side, got %v", tt.zone, home)
		}
		isFront := home[1] < court.NetY+court.AttackLine
		if isFront != tt.front {
			t.Errorf("zone %d: front row = %v, want %v", tt.zone, isFront, tt.front)
		}
		if tt.left && home[0] > 0.5 {
			t.Errorf("zone %d: expected left half, got x=%f", tt.zone, home[0])
		}

		away, err := court.ZoneCenter(tt.zone, Away)
		if err != nil {
			t.Fatalf("zone %d away: unexpected error %v", tt.zone, err)
		}
		if !away.ApproxEqual(court.Mirror(home)) {
			t.Errorf("zone %d: AWAY centre %v is not the mirror of %v", tt.zone, away, home)
		}
	}
}

func TestZoneCenterUnknownZone(t *testing.T) {
	court := DefaultCourt()
	for _, zone := range []int{0, 7, -1} {
		_, err := court.ZoneCenter(zone, Home)
		if !errors.Is(err, ErrUnknownZone) {
			t.Errorf("zone %d: expected ErrUnknownZone, got %v", zone, err)
		}
	}
}

func TestClampToSide(t *testing.T) {
	court := DefaultCourt()

	p := court.ClampToSide(Vec2{0.5, 0.3}, Home, 0.02)
	if math.Abs(p[1]-0.52) > 1e-12 {
		t.Errorf("Expected HOME clamp to y=0.52, got %f", p[1])
	}

	p = court.ClampToSide(Vec2{0.5, 0.7}, Away, 0.02)
	if math.Abs(p[1]-0.48) > 1e-12 {
		t.Errorf("Expected AWAY clamp to y=0.48, got %f", p[1])
	}

	p = court.ClampToSide(Vec2{2, 2}, Home, 0.02)
	if p != court.BoundsMax {
		t.Errorf("Expected clamp to bounds max %v, got %v", court.BoundsMax, p)
	}
}

func TestClampToSideNonFinite(t *testing.T) {
	court := DefaultCourt()
	tests := []struct {
		name string
		p    Vec2
		side Side
	}{
		{"NaN x", Vec2{math.NaN(), 0.7}, Home},
		{"NaN y", Vec2{0.4, math.NaN()}, Away},
		{"infinite", Vec2{math.Inf(1), math.Inf(-1)}, Home},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := court.ClampToSide(tt.p, tt.side, 0.02)
			if want := court.Center(tt.side); got != want {
				t.Errorf("Expected %v, got %v", want, got)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if _, err := Validate2(Vec2{math.NaN(), 0}); !errors.Is(err, ErrNonFinite) {
		t.Errorf("Expected ErrNonFinite for NaN, got %v", err)
	}
	if _, err := Validate3(Vec3{0, math.Inf(1), 0}); !errors.Is(err, ErrNonFinite) {
		t.Errorf("Expected ErrNonFinite for Inf, got %v", err)
	}
	if v, err := Validate2(Vec2{0.2, 0.3}); err != nil || v != (Vec2{0.2, 0.3}) {
		t.Errorf("Expected valid vector to pass through, got %v %v", v, err)
	}
}

func TestSafeNormalize(t *testing.T) {
	if n := SafeNormalize(Vec2{}); n != (Vec2{}) {
		t.Errorf("Expected zero vector, got %v", n)
	}
	n := SafeNormalize(Vec2{3, 4})
	if math.Abs(n.Len()-1) > 1e-12 {
		t.Errorf("Expected unit length, got %f", n.Len())
	}
}
