/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package version

import "fmt"

// Version is overridden at build time via -ldflags "-X caseconstructor/internal/version.Version=...".
var Version = "0.1.0-dev"

// Commit is the short VCS revision, empty for local builds.
var Commit = ""

func String() string {
	if Commit == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, Commit)
}
