// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"codeberg.org/antigravity/frontend/core/contentkeys"
)

// maxRequestBody bounds the JSON bodies accepted by the API.
const maxRequestBody = 4 << 20

// translationKeysRequest is the body of POST /api/translation-keys.
type translationKeysRequest struct {
	HTML string `json:"html"`

	// Policy is a collision policy name. Empty selects the default.
	Policy string `json:"policy"`
}

func (req translationKeysRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.HTML, validation.Required),
		validation.Field(&req.Policy, validation.By(func(value any) error {
			if _, err := contentkeys.ParseCollisionPolicy(value.(string)); err != nil {
				return validation.NewError("validation_collision_policy",
					"must be one of merge, last-write-wins, first-write-wins or strict")
			}

			return nil
		})),
	)
}

// collisionResponse is the 422 body sent when a strict extraction fails.
type collisionResponse struct {
	Error      string                  `json:"error"`
	Collisions []contentkeys.Collision `json:"collisions"`
}

// TranslationKeys extracts the key map of an HTML body for the authoring
// side.
func TranslationKeys(w http.ResponseWriter, r *http.Request) error {
	var req translationKeysRequest

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		return writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
	}

	if err := req.Validate(); err != nil {
		return writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request", "fields": err})
	}

	// Validate has accepted the policy.
	policy, _ := contentkeys.ParseCollisionPolicy(req.Policy)

	extractor := contentkeys.Extractor{
		Policy: policy,
		Logger: log.With().Str("sys", "contentkeys").Logger(),
	}

	keys, err := extractor.Extract(req.HTML)
	if err != nil {
		var collisionErr *contentkeys.CollisionError
		if errors.As(err, &collisionErr) {
			return writeJSON(w, http.StatusUnprocessableEntity, collisionResponse{
				Error:      err.Error(),
				Collisions: collisionErr.Collisions,
			})
		}

		return err
	}

	return writeJSON(w, http.StatusOK, keys)
}
