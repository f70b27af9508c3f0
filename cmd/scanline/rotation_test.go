package main

import (
	"math"
	"testing"
)

func TestRotationDecays(t *testing.T) {
	r := NewRotationState(30)
	r.ApplyImpulse(0, 1)

	var total float64
	for range 300 {
		yaw, pitch := r.Update()
		if pitch != 0 {
			t.Fatalf("pitch moved without an impulse: %v", pitch)
		}
		total += yaw
	}

	if math.Abs(r.Yaw.Velocity) > 1e-3 {
		t.Errorf("velocity %v did not decay", r.Yaw.Velocity)
	}
	if total <= 1 {
		t.Errorf("total rotation %v, want more than the first step", total)
	}

	r.Reset()
	if r.Yaw.Velocity != 0 || r.Pitch.Velocity != 0 {
		t.Error("Reset kept velocity")
	}
}
