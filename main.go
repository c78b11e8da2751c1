// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package main

import "github.com/Pmelo22/ClinicOps-sub000/cmd"

func main() {
	cmd.Execute()
}
