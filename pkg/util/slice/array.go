/*
Package slice contains byte slice helpers.
*/
package slice

// Copy creates a copy of b.
func Copy(b []byte) []byte {
	if b == nil {
		return nil
	}
	d := make([]byte, len(b))
	copy(d, b)
	return d
}

// Concat returns a freshly allocated slice holding all parts one after
// another. The result never aliases any of the parts.
func Concat(parts ...[]byte) []byte {
	var n int
	for i := range parts {
		n += len(parts[i])
	}
	res := make([]byte, 0, n)
	for i := range parts {
		res = append(res, parts[i]...)
	}
	return res
}
