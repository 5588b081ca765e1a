// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"runtime/debug"
	"strings"
)

// BuildVersion is the latest tagged release.
const BuildVersion string = "v0.4.0"

// shortRevisionLength is the number of commit hash characters in Revision.
const shortRevisionLength = 8

// buildInfo describes the commit the binary was built from, as recorded by
// the Go toolchain.
type buildInfo struct {
	VcsRevision string
	VcsTime     string
	VcsModified bool
}

// Revision returns "<commit date>-<short hash>[+dirty]", or "unknown" for
// builds without VCS information.
func (b *buildInfo) Revision() string {
	if b.VcsRevision == "" {
		return "unknown"
	}

	date, _, _ := strings.Cut(b.VcsTime, "T")
	hash := b.VcsRevision[:min(len(b.VcsRevision), shortRevisionLength)]

	revision := date + "-" + hash
	if b.VcsModified {
		revision += "+dirty"
	}

	return revision
}

func (b *buildInfo) load() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	b.VcsRevision = settings["vcs.revision"]
	b.VcsTime = settings["vcs.time"]
	b.VcsModified = settings["vcs.modified"] == "true"
}
