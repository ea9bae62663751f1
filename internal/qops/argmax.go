package qops

// Argmax returns the index of the largest value.
// Ties resolve to the highest index; an empty slice returns 0.
func Argmax(data []int32) int {
	best := 0
	for i, v := range data {
		if v >= data[best] {
			best = i
		}
	}
	return best
}
