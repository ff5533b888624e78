package memutils

// deadRangeZapValue is an 8-byte pattern that is copied over the bodies of dead ranges
const deadRangeZapValue uint64 = 0xBAADBABEBAADBABE

// ZapWords overwrites the provided words with an easy-to-identify marker.
func ZapWords(words []uint64) {
	for i := range words {
		words[i] = deadRangeZapValue
	}
}

// IsZapped verifies that the easy-to-identify marker written by ZapWords is still present.
// It returns true if the value is still present across all the provided words and false otherwise.
func IsZapped(words []uint64) bool {
	for _, word := range words {
		if word != deadRangeZapValue {
			return false
		}
	}

	return true
}
