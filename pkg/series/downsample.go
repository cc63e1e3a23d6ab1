package series

// Downsample reduces points to at most maxPoints using simple decimation for display.
// Destination-based: reuses dst if it has sufficient capacity, otherwise allocates new.
// If len(points) <= maxPoints, all points are copied.
func Downsample(dst []Point, points []Point, maxPoints int) []Point {
	if maxPoints <= 0 || len(points) <= maxPoints {
		if cap(dst) >= len(points) {
			dst = dst[:len(points)]
			copy(dst, points)
			return dst
		}
		result := make([]Point, len(points))
		copy(result, points)
		return result
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0]
	} else {
		dst = make([]Point, 0, maxPoints)
	}

	step := float64(len(points)) / float64(maxPoints)

	for i := range maxPoints {
		idx := int(float64(i) * step)
		if idx < len(points) {
			dst = append(dst, points[idx])
		}
	}

	// Always keep the newest point so the live edge of the chart is accurate.
	if last := points[len(points)-1]; dst[len(dst)-1] != last {
		dst[len(dst)-1] = last
	}

	return dst
}
