package roll

import (
	"encoding/json"
	"fmt"
)

// Staged flows carry all of their state in the action values echoed back by
// the chat platform. Payloads are versioned JSON so a stale button from a
// previous deploy fails loudly instead of misparsing.

const payloadVersion = 1

// Cast flow stages.
const (
	castStageForce = "force"
	castStageMode  = "mode"
	castStageRoll  = "roll"
)

// Spellcasting modes.
const (
	castModeNormal   = "normal"
	castModeReckless = "reckless"
	castModePush     = "push"
)

type castPayload struct {
	V       int    `json:"v"`
	Stage   string `json:"stage"`
	SpellID string `json:"spellId"`
	Force   int    `json:"force,omitempty"`
	Mode    string `json:"mode,omitempty"`
}

// Addiction flow stages.
const (
	addictionStageWeeks = "weeks"
	addictionStageTest  = "test"
	addictionStageRoll  = "roll"
)

type addictionPayload struct {
	V     int    `json:"v"`
	Stage string `json:"stage"`
	Drug  string `json:"drug"`
	Weeks int    `json:"weeks,omitempty"`
	// Kind is the test being rolled, "psy" or "phys".
	Kind string `json:"kind,omitempty"`
	// Final marks the second test of a drug that requires both kinds.
	Final bool `json:"final,omitempty"`
}

func encodePayload(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		// Payload structs contain only scalars; Marshal cannot fail.
		panic(err)
	}
	return string(raw)
}

func decodeCastPayload(s string) (castPayload, error) {
	var p castPayload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return castPayload{}, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if p.V != payloadVersion {
		return castPayload{}, fmt.Errorf("%w: unsupported payload version %d", ErrInvalidArguments, p.V)
	}
	return p, nil
}

func decodeAddictionPayload(s string) (addictionPayload, error) {
	var p addictionPayload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return addictionPayload{}, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if p.V != payloadVersion {
		return addictionPayload{}, fmt.Errorf("%w: unsupported payload version %d", ErrInvalidArguments, p.V)
	}
	return p, nil
}
