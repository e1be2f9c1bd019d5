package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Key derives a deterministic cache key from the target agent, the task
// name and the task inputs. Inputs are canonicalized through encoding/json,
// which marshals map keys in sorted order, so logically identical inputs
// produce the same key regardless of construction order.
func Key(agentID, taskName string, inputs map[string]any) string {
	encoded, err := json.Marshal(inputs)
	if err != nil {
		// Non-serializable inputs fall back to their formatted value; the
		// key stays usable, it just loses cross-order stability.
		encoded = []byte(fmt.Sprintf("%v", inputs))
	}

	h := sha256.New()
	h.Write([]byte(agentID))
	h.Write([]byte{0})
	h.Write([]byte(taskName))
	h.Write([]byte{0})
	h.Write(encoded)
	return hex.EncodeToString(h.Sum(nil)[:16])
}
