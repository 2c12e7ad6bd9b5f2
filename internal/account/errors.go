// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

package account

import "errors"

// ErrInvalidCredentials is returned on a password mismatch. The message is
// deliberately generic so callers cannot tell which part failed.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrInconsistent is returned when an auth record exists without a
// matching player record. This data-integrity condition is surfaced, never
// silently repaired.
var ErrInconsistent = errors.New("auth record exists without player record")
