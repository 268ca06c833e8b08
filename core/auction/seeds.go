package auction

// deriveSeeds expands base into n independent non-negative seeds with the
// SplitMix64 sequence.
func deriveSeeds(base int64, n int) []int64 {
	out := make([]int64, n)
	x := uint64(base)
	for i := range out {
		x += 0x9E3779B97F4A7C15
		z := x
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		z ^= z >> 31
		out[i] = int64(z &^ (1 << 63))
	}
	return out
}
