package processor

import (
	"crypto/md5"
	"encoding/hex"
)

// Fingerprint returns the MD5 digest of data as 32 lowercase hex digits.
// It only names temporary files and carries no security meaning.
func Fingerprint(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// FingerprintPath fingerprints a path string.
func FingerprintPath(path string) string {
	return Fingerprint([]byte(path))
}
