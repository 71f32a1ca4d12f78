package world

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zeebo/xxh3"
)

// ErrDecode wraps every failure to decode a world snapshot.
var ErrDecode = errors.New("decode world state")

// Encode serializes ws to its flat JSON form. Decode(Encode(ws)) equals ws.
func (ws WorldState) Encode() ([]byte, error) {
	data, err := json.Marshal(ws)
	if err != nil {
		return nil, fmt.Errorf("encode world state: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot produced by Encode.
func Decode(data []byte) (WorldState, error) {
	var ws WorldState
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ws); err != nil {
		return WorldState{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return ws, nil
}

// Fingerprint hashes the encoded snapshot. Two worlds with the same
// fingerprint are, for replay purposes, the same world.
func (ws WorldState) Fingerprint() (uint64, error) {
	data, err := ws.Encode()
	if err != nil {
		return 0, err
	}
	return xxh3.Hash(data), nil
}

// Equal reports whether a and b encode identically.
func Equal(a, b WorldState) bool {
	da, errA := a.Encode()
	db, errB := b.Encode()
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(da, db)
}
