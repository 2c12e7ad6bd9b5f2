// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

package account

import (
	"encoding"

	"github.com/ironvale/playerstore/internal/auth"
)

// PlayerSave is the capability the persistence core requires of the
// external player object: binary marshal and unmarshal, nothing else. The
// core never inspects the serialized structure.
type PlayerSave interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// Clan is the capability required of the external clan object. Clan state
// is embedded inside the owner's player record; UnmarshalBinary receives
// the full record and extracts the clan portion.
type Clan interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// SaveFactory produces a save object for an identity. For new
// registrations the returned object carries the default policy values; for
// existing accounts it is the destination UnmarshalBinary fills.
type SaveFactory func(identity Identity) PlayerSave

// RecordMerge produces an updated player record embedding new clan state.
// Supplied by the external clan serializer; the core only moves the bytes.
type RecordMerge func(record []byte) ([]byte, error)

// Identity is the authenticated identity attached to a login.
type Identity struct {
	Username string
	UserID   int32
	Rights   auth.Rights
}

// Defaults is the policy table applied to newly registered players. The
// values are fixed, not computed.
type Defaults struct {
	SpawnX int
	SpawnY int
	SpawnZ int

	RunEnergy     int
	SpecialEnergy int
	SpellBook     int

	HitpointsLevel int
	SkillLevel     int

	InventorySlots int
	EquipmentSlots int

	Looks   [7]int
	Colours [5]int
}

// DefaultTable holds the new-player policy values.
var DefaultTable = Defaults{
	SpawnX: 3222,
	SpawnY: 3218,
	SpawnZ: 0,

	RunEnergy:     100,
	SpecialEnergy: 100,
	SpellBook:     193,

	HitpointsLevel: 10,
	SkillLevel:     1,

	InventorySlots: 28,
	EquipmentSlots: 14,

	Looks:   [7]int{0, 10, 18, 26, 33, 36, 42},
	Colours: [5]int{0, 0, 0, 0, 0},
}
