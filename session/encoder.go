package session

import (
	"encoding/json"
	"errors"
)

// ErrMalformedUser is returned when a persisted user record cannot be decoded.
var ErrMalformedUser = errors.New("malformed persisted user")

// EncodeUser serializes a user record for durable storage.
func EncodeUser(u UserRecord) (string, error) {
	if u == nil {
		return "", ErrMalformedUser
	}
	data, err := json.Marshal(u)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeUser parses a persisted user record. Anything other than a non-null
// JSON object is malformed.
func DecodeUser(data string) (UserRecord, error) {
	if data == "" {
		return nil, ErrMalformedUser
	}
	var u UserRecord
	if err := json.Unmarshal([]byte(data), &u); err != nil {
		return nil, ErrMalformedUser
	}
	if u == nil {
		return nil, ErrMalformedUser
	}
	return u, nil
}
