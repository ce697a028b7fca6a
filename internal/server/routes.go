package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func (h *Handler) Mount(r chi.Router) {
	r.Use(RequestLogger(h.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.allowedOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/health", Health(h))

	r.Route("/api", func(r chi.Router) {
		r.Get("/profile/{user_id}", GetProfile(h))
		r.Patch("/profile/{user_id}", UpdateProfile(h))
		r.Post("/tweet/{user_id}", CreateTweet(h))
		r.Get("/tweets/{user_id}", ListTweets(h))
	})
}

func Health(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(h.logger, w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
