package history

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// position marks the last record of a page; the next page starts strictly after it in
// newest-first order.
type position struct {
	ID        int64
	Timestamp string
}

func (p position) record() Record {
	return Record{ID: p.ID, Timestamp: p.Timestamp}
}

func encodeCursor(r Record) string {
	raw := strconv.FormatInt(r.ID, 10) + "|" + r.Timestamp
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(token string) (position, bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return position{}, false, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return position{}, false, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	idPart, timestamp, ok := strings.Cut(string(raw), "|")
	if !ok {
		return position{}, false, fmt.Errorf("%w: missing separator", ErrInvalidCursor)
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id < 1 {
		return position{}, false, fmt.Errorf("%w: bad id %q", ErrInvalidCursor, idPart)
	}
	return position{ID: id, Timestamp: timestamp}, true, nil
}
