package common

// WipeByteArray overwrites b with zeros. Used for passwords read from the
// terminal once they have been sent. Nil is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// BearerValue formats token for the Authorization header.
func BearerValue(token string) string {
	return "Bearer " + token
}
