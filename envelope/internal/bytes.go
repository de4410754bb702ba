package internal

// ZeroPad pads the byte slice to the specified length by prepending zeros.
// If the slice is already longer than or equal to the target length,
// it returns the first 'length' bytes.
func ZeroPad(b []byte, length int) []byte {
	if len(b) >= length {
		return b[:length]
	}

	result := make([]byte, length)
	copy(result[length-len(b):], b)
	return result
}
