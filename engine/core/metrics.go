package core

import "github.com/spaghettifunk/oncue/engine/containers"

const AVG_COUNT int = 30

// Metrics keeps rolling frame statistics for the frame driver.
type Metrics struct {
	frameTimes         *containers.RingQueue[float64]
	drawCalls          *containers.RingQueue[uint32]
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64
	LastDrawCalls      uint32
	TotalFrames        uint64
}

func NewMetrics() *Metrics {
	return &Metrics{
		frameTimes: containers.NewRingQueue[float64](AVG_COUNT),
		drawCalls:  containers.NewRingQueue[uint32](AVG_COUNT),
	}
}

// Update records one frame. frameElapsedTime is in seconds.
func (m *Metrics) Update(frameElapsedTime float64, drawCalls uint32) {
	frameMS := frameElapsedTime * 1000.0
	m.frameTimes.Push(frameMS)
	m.drawCalls.Push(drawCalls)
	m.LastDrawCalls = drawCalls
	m.TotalFrames++

	sum := 0.0
	m.frameTimes.Each(func(v float64) { sum += v })
	m.MSavg = sum / float64(m.frameTimes.Len())

	// Calculate Frames per second.
	m.AccumulatedFrameMS += frameMS
	if m.AccumulatedFrameMS > 1000 {
		m.FPS = float64(m.Frames)
		m.AccumulatedFrameMS -= 1000
		m.Frames = 0
	}

	// Count all Frames.
	m.Frames++
}

func (m *Metrics) FrameTime() float64 {
	return m.MSavg
}

// AverageDrawCalls returns the mean draw submissions over the rolling window.
func (m *Metrics) AverageDrawCalls() float64 {
	if m.drawCalls.Len() == 0 {
		return 0
	}
	var sum uint64
	m.drawCalls.Each(func(v uint32) { sum += uint64(v) })
	return float64(sum) / float64(m.drawCalls.Len())
}

func (m *Metrics) Frame() (float64, float64) {
	return m.FPS, m.MSavg
}
