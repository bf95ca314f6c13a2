package internal

import (
	"encoding/json"
)

// Marshal encodes payload for storage. Raw bytes and strings pass through untouched.
func Marshal(payload any) ([]byte, error) {
	switch v := payload.(type) {
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return json.Marshal(payload)
	}
}

// Unmarshal decodes data into holder, which must be a pointer.
// *[]byte and *string holders receive the raw bytes.
func Unmarshal(data []byte, holder any) error {
	switch v := holder.(type) {
	case *[]byte:
		*v = append((*v)[:0], data...)
		return nil
	case *json.RawMessage:
		*v = append((*v)[:0], data...)
		return nil
	case *string:
		*v = string(data)
		return nil
	default:
		return json.Unmarshal(data, holder)
	}
}
