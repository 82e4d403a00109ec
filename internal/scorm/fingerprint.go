package scorm

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// packageIdentifier derives the manifest identifier from the course id and
// a digest of the data blob. Content-addressed rather than timestamped:
// re-exporting an unchanged course produces the same identifier.
func packageIdentifier(courseID string, blob []byte) string {
	sum := blake2b.Sum256(blob)
	return fmt.Sprintf("course_%s_%s", courseID, hex.EncodeToString(sum[:8]))
}
