// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

package auth

import "errors"

// ErrCorrupt is returned when a record fails structural validation
// (truncated data or magic mismatch).
var ErrCorrupt = errors.New("corrupt auth record")
