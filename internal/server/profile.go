package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tweet-relay/internal/profiles"
	"tweet-relay/internal/profiles/writer"
)

// profileUpdateRequest is the PATCH body. Pointer fields distinguish "leave
// untouched" (absent/null) from "overwrite with empty" (present).
type profileUpdateRequest struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
	Website  *string `json:"website"`
	Location *string `json:"location"`
}

// GetProfile returns the stored profile record matching the user_id path
// parameter.
func GetProfile(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "user_id")
		logger := h.logger.With(zap.String("profileId", id))

		rec, err := h.reader.Get(id)
		switch {
		case err == nil:
		case errors.Is(err, profiles.ErrNotFound):
			respondDetail(h.logger, w, http.StatusNotFound, "Profile not found")
			return
		default:
			// datastore failures are logged with detail but not surfaced
			logger.Error("unable to fetch profile", zap.Error(err))
			respondDetail(h.logger, w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		respondJSON(h.logger, w, http.StatusOK, rec)
	}
}

// UpdateProfile overwrites the fields present in the PATCH body and returns
// the updated record. Absent fields are left untouched, so applying the same
// partial update twice yields the same final state.
func UpdateProfile(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "user_id")
		logger := h.logger.With(zap.String("profileId", id))

		var req profileUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("unable to decode profile update body", zap.Error(err))
			respondDetail(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}

		var updates []writer.Update
		for _, f := range []struct {
			field string
			value *string
		}{
			{field: "username", value: req.Username},
			{field: "bio", value: req.Bio},
			{field: "website", value: req.Website},
			{field: "location", value: req.Location},
		} {
			if f.value != nil {
				updates = append(updates, writer.Update{Field: f.field, Value: *f.value})
			}
		}

		if err := h.writer.UpdateFields(id, updates...); err != nil {
			logger.Error("unable to update profile", zap.Error(err))
			respondDetail(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}

		rec, err := h.reader.Get(id)
		if err != nil {
			logger.Error("unable to fetch updated profile", zap.Error(err))
			respondDetail(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}

		respondJSON(h.logger, w, http.StatusOK, rec)
	}
}
