package raster

import "math"

// ResampleFrames approximates a playback speed change by dropping frames:
// for speed > 1 the kept-frame step is ceil(n / (n/speed)), for speed < 1
// every frame is kept and delays are stretched by 1/speed. reverse flips the
// frame and delay order after resampling. This is a frame-skipping
// approximation, not interpolation, so visual smoothness degrades at high
// speed factors.
func ResampleFrames(frames []Frame, speed float64, reverse bool) []Frame {
	if speed <= 0 {
		speed = 1
	}
	n := len(frames)
	constraint := float64(n)
	if speed > 1 {
		constraint = float64(n) / speed
	}
	step := 1
	if constraint > 0 {
		step = int(math.Ceil(float64(n) / constraint))
	}
	if step < 1 {
		step = 1
	}
	out := make([]Frame, 0, n)
	for i := 0; i < n; i += step {
		f := Frame{Image: CloneNRGBA(frames[i].Image), Delay: frames[i].Delay}
		if speed < 1 {
			f.Delay = int(float64(f.Delay) / speed)
		}
		out = append(out, f)
	}
	if reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}
