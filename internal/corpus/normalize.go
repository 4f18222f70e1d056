package corpus

import (
	"bytes"
	"encoding/json"

	"annoreview/internal/domain"
)

// NormalizeBDI converts a turn's raw cognitive-state field into the
// canonical ordered item sequence. The source ships two shapes: an array of
// {type, text} objects, or an object mapping type to text. Absent or
// unusable input yields nil. Type values are preserved verbatim; no enum
// check happens here.
func NormalizeBDI(t domain.Turn) []domain.BDIItem {
	raw := bytes.TrimSpace(t.RawBDI)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	switch raw[0] {
	case '[':
		var items []domain.BDIItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		return items
	case '{':
		items, err := decodeObjectForm(raw)
		if err != nil {
			return nil
		}
		return items
	}
	return nil
}

// decodeObjectForm walks the object token by token so the canonical sequence
// keeps the key order of the JSON text. One entry per key.
func decodeObjectForm(raw []byte) ([]domain.BDIItem, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil { // opening brace
		return nil, err
	}

	var items []domain.BDIItem
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		var text string
		if err := dec.Decode(&text); err != nil {
			return nil, err
		}
		items = append(items, domain.BDIItem{Type: domain.BDIType(key), Text: text})
	}
	return items, nil
}
