package plan

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

// ObjectiveHash returns a stable content digest of the objective text.
// The digest is compared across processes (stored override vs live
// objective), so it must not depend on runtime hash seeding.
func ObjectiveHash(objective string) string {
	sum := blake3.Sum256([]byte(strings.TrimSpace(objective)))
	return hex.EncodeToString(sum[:])
}

// Fingerprint returns a stable digest of the plan's observable state.
// Two loop steps seeing the same fingerprint saw no plan progress.
func Fingerprint(steps []Step) string {
	h := blake3.New()
	for _, s := range steps {
		h.Write([]byte(s.Description))
		h.Write([]byte{0})
		h.Write([]byte(s.Status))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
