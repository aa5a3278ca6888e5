// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

var (
	// Version holds the CLI version information.
	// This value is typically set at build time using -ldflags "-X sqlrun/cli/cmd.Version=...".
	Version = "0.0.0-dev"
)
