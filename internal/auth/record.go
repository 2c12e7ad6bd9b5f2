// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

// Package auth provides the fixed-layout credential record used by the
// file-backed player store.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"

	"github.com/samber/oops"
)

// Magic identifies a valid auth record. Every decode validates it; a
// mismatch means the record is corrupt.
const Magic uint32 = 0xABC12345

// Record field widths. The on-disk layout is big-endian:
// magic (4) | user id (4) | rights (1) | salt (16) | sha256(salt||password) (32).
const (
	SaltLen   = 16
	HashLen   = sha256.Size
	RecordLen = 4 + 4 + 1 + SaltLen + HashLen
)

// Rights is a player's privilege level.
type Rights uint8

// Privilege levels, in ascending order of power.
const (
	RightsPlayer Rights = iota
	RightsModerator
	RightsAdmin
	RightsOwner
)

// Valid reports whether r is a known privilege level.
func (r Rights) Valid() bool {
	return r <= RightsOwner
}

// String returns the human-readable name of the rights level.
func (r Rights) String() string {
	switch r {
	case RightsPlayer:
		return "player"
	case RightsModerator:
		return "moderator"
	case RightsAdmin:
		return "admin"
	case RightsOwner:
		return "owner"
	default:
		return "unknown"
	}
}

// Record is one account's credentials as stored on disk.
type Record struct {
	UserID       int32
	Rights       Rights
	Salt         [SaltLen]byte
	PasswordHash [HashLen]byte
}

// NewRecord builds a record for the given identity and password using a
// fresh random salt.
func NewRecord(userID int32, rights Rights, password string) (*Record, error) {
	if !rights.Valid() {
		return nil, oops.Code("AUTH_INVALID_RIGHTS").
			With("rights", uint8(rights)).
			Errorf("invalid rights level")
	}

	salt, err := NewSalt()
	if err != nil {
		return nil, err
	}

	r := &Record{
		UserID: userID,
		Rights: rights,
		Salt:   salt,
	}
	r.PasswordHash = HashPassword(password, salt)
	return r, nil
}

// NewSalt returns a cryptographically random salt.
func NewSalt() ([SaltLen]byte, error) {
	var salt [SaltLen]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return salt, oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}
	return salt, nil
}

// HashPassword computes sha256(salt || password). The digest layout is part
// of the wire format; consumers of existing .auth files depend on it.
func HashPassword(password string, salt [SaltLen]byte) [HashLen]byte {
	h := sha256.New()
	h.Write(salt[:])
	h.Write([]byte(password))
	var out [HashLen]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Verify reports whether password matches the record's stored hash.
// Comparison is constant-time.
func (r *Record) Verify(password string) bool {
	computed := HashPassword(password, r.Salt)
	return subtle.ConstantTimeCompare(computed[:], r.PasswordHash[:]) == 1
}

// Encode serializes the record into its 57-byte on-disk form.
func (r *Record) Encode() []byte {
	buf := make([]byte, RecordLen)
	binary.BigEndian.PutUint32(buf[0:4], Magic)
	binary.BigEndian.PutUint32(buf[4:8], uint32(r.UserID))
	buf[8] = byte(r.Rights)
	copy(buf[9:9+SaltLen], r.Salt[:])
	copy(buf[9+SaltLen:], r.PasswordHash[:])
	return buf
}

// Decode parses an on-disk record. Short input or a magic mismatch yields
// an error wrapping ErrCorrupt.
func Decode(data []byte) (*Record, error) {
	if len(data) < RecordLen {
		return nil, oops.Code("AUTH_RECORD_TRUNCATED").
			With("length", len(data)).
			With("want", RecordLen).
			Wrap(ErrCorrupt)
	}
	if magic := binary.BigEndian.Uint32(data[0:4]); magic != Magic {
		return nil, oops.Code("AUTH_BAD_MAGIC").
			With("magic", magic).
			Wrap(ErrCorrupt)
	}

	r := &Record{
		UserID: int32(binary.BigEndian.Uint32(data[4:8])),
		Rights: Rights(data[8]),
	}
	copy(r.Salt[:], data[9:9+SaltLen])
	copy(r.PasswordHash[:], data[9+SaltLen:RecordLen])
	return r, nil
}

// Validate is a structural check suitable for the store's validated read
// path: it fails on short data or a bad magic without a full decode.
func Validate(data []byte) error {
	if len(data) < RecordLen {
		return oops.Code("AUTH_RECORD_TRUNCATED").
			With("length", len(data)).
			Wrap(ErrCorrupt)
	}
	if magic := binary.BigEndian.Uint32(data[0:4]); magic != Magic {
		return oops.Code("AUTH_BAD_MAGIC").
			With("magic", magic).
			Wrap(ErrCorrupt)
	}
	return nil
}
