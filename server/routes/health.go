// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"

	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/server/pagecache"
)

type health struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Started     string `json:"started"`
	CachedPages int    `json:"cachedPages"`
}

// Healthz reports that the server is up. It never contacts WordPress.
func Healthz(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, http.StatusOK, health{
		Status:      "ok",
		Version:     config.BuildVersion,
		Started:     config.Global.Instance.StartingTime,
		CachedPages: pagecache.Len(),
	})
}
