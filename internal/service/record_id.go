package service

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// newRecordID builds a prefix_<unix-millis>_<random> identifier for
// records created without one.
func newRecordID(prefix string) string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = idAlphabet[rand.IntN(len(idAlphabet))]
	}
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), suffix)
}

// suppliedID extracts a caller-provided string id from an input mapping.
func suppliedID(input map[string]any) string {
	if v, ok := input["id"].(string); ok {
		return v
	}
	return ""
}
