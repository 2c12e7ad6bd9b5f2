// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

package store

import "errors"

// ErrNotFound is returned when no record exists at a path. Absence is a
// valid outcome, not a failure; callers check it with errors.Is.
var ErrNotFound = errors.New("not found")

// ErrCorrupt is returned when a record is unreadable beyond recovery:
// the main file failed and no usable backup generation exists.
var ErrCorrupt = errors.New("both copies corrupt")
