package predictor

// Each engine encodes its request into a fixed-width feature vector with
// every component in [0,1]. Normalization divides by a documented ceiling
// and saturates above it, so an extreme but valid request degrades a
// prediction instead of breaking it.

// norm scales v by the ceiling and clamps the result to [0,1].
func norm(v, ceiling float64) float64 {
	if ceiling <= 0 {
		return 0
	}
	return clamp01(v / ceiling)
}

func clamp01(v float64) float64 {
	return clampRange(v, 0, 1)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// seriesTrend condenses a sensor history into a [-1,1] drift score: the mean
// of the newer half against the mean of the older half, scaled by the older
// mean. Fewer than two readings carry no trend.
func seriesTrend(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	half := len(values) / 2
	older := mean(values[:half])
	newer := mean(values[len(values)-half:])
	scale := older
	if scale < 0 {
		scale = -scale
	}
	if scale < 1 {
		scale = 1
	}
	return clampRange((newer-older)/scale, -1, 1)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
