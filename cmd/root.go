// Copyright 2026 ClinicOps Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clinicops",
	Short: "ClinicOps subscription service",
	Long:  `Tenant onboarding, invites, and subscription reconciliation for ClinicOps. Configuration comes from environment variables listed in the readme.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
