package detectors

import "math"

// Entropy returns the Shannon entropy of s in bits per byte, computed over
// byte frequencies. The empty string has zero entropy.
func Entropy(s string) float64 {
	if s == "" {
		return 0
	}
	var count [256]int
	for i := 0; i < len(s); i++ {
		count[s[i]]++
	}
	H := 0.0
	n := float64(len(s))
	for _, c := range count {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		H -= p * math.Log2(p)
	}
	return H
}

// BelowThreshold reports whether value fails the pattern's entropy floor.
// A zero threshold never rejects.
func (p SecretPattern) BelowThreshold(value string) bool {
	return p.EntropyThreshold > 0 && Entropy(value) < p.EntropyThreshold
}
