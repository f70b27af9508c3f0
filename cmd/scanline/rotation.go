package main

import "github.com/charmbracelet/harmonica"

// RotationAxis tracks velocity for one orbit axis with spring decay.
type RotationAxis struct {
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // internal spring velocity (for animating Velocity toward 0)
}

// NewRotationAxis creates an axis with harmonica spring for smooth velocity decay
func NewRotationAxis(fps int) RotationAxis {
	return RotationAxis{
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update returns the angle to move this frame and decays velocity toward 0.
func (a *RotationAxis) Update() float64 {
	step := a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
	return step
}

// RotationState holds the yaw and pitch axes of the orbiting camera.
type RotationState struct {
	Pitch, Yaw RotationAxis
	fps        int
}

func NewRotationState(fps int) *RotationState {
	return &RotationState{
		Pitch: NewRotationAxis(fps),
		Yaw:   NewRotationAxis(fps),
		fps:   fps,
	}
}

// Update advances both axes and returns this frame's yaw and pitch steps.
func (r *RotationState) Update() (yaw, pitch float64) {
	return r.Yaw.Update(), r.Pitch.Update()
}

func (r *RotationState) ApplyImpulse(pitch, yaw float64) {
	r.Pitch.Velocity += pitch
	r.Yaw.Velocity += yaw
}

func (r *RotationState) Reset() {
	r.Pitch = NewRotationAxis(r.fps)
	r.Yaw = NewRotationAxis(r.fps)
}
