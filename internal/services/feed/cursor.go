package feed

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// seenLimit caps the exclusion list carried inside a cursor. Very deep
// pagination forgets the oldest seen ids, which at worst resurfaces an old
// candidate.
const seenLimit = 500

// cursor marks pagination progress: the last returned candidate and the ids
// already shown. It is an exclusion list, not a stable sort key; pages may
// reorder as new entrants appear.
type cursor struct {
	LastID int64   `json:"last_id"`
	Seen   []int64 `json:"seen,omitempty"`
}

func encodeCursor(c cursor) string {
	if len(c.Seen) > seenLimit {
		c.Seen = c.Seen[len(c.Seen)-seenLimit:]
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(payload)
}

func decodeCursor(raw string) (cursor, error) {
	if raw == "" {
		return cursor{}, nil
	}

	payload, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return cursor{}, fmt.Errorf("decode cursor: %w", err)
	}

	var c cursor
	if err := json.Unmarshal(payload, &c); err != nil {
		return cursor{}, fmt.Errorf("unmarshal cursor: %w", err)
	}
	return c, nil
}
