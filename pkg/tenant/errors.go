// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import "errors"

var ErrNotFound = errors.New("tenant not found")
