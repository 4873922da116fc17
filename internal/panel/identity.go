package panel

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// DefaultInstanceID is the legacy single-instance id used by callers that
// never pass one.
const DefaultInstanceID = "wv_default"

// randomPrefix prefixes generated ids.
const randomPrefix = "wv_"

// randomCounter is process-wide; it is never reset so generated ids are never
// reused, even after the instance that held one is gone.
var randomCounter atomic.Uint64

// Normalize trims raw. A non-empty result is returned verbatim; otherwise a
// fresh "wv_<n>" id is generated and wasRandom is true.
func Normalize(raw string) (id string, wasRandom bool) {
	if s := strings.TrimSpace(raw); s != "" {
		return s, false
	}
	return randomPrefix + strconv.FormatUint(randomCounter.Add(1), 10), true
}

// normalizeFree behaves like Normalize but skips generated ids for which
// taken reports true: ids claimed explicitly or persisted by an earlier run.
func normalizeFree(raw string, taken func(string) bool) (string, bool) {
	for {
		id, random := Normalize(raw)
		if !random || taken == nil || !taken(id) {
			return id, random
		}
	}
}
