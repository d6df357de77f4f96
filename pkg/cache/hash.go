package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// hashKey returns "<kind>:<sha256>" over parts, each formatted with %v and
// terminated by a NUL byte so that adjacent parts cannot run together.
func hashKey(kind string, parts ...any) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%v\x00", p)
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data. FileCache names its entry files by
// the hash of the key.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
