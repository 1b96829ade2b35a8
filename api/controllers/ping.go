package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/greenloop-app/greenloop-backend/api/middleware"
	"github.com/greenloop-app/greenloop-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if userID := middleware.UserIDFromContext(r.Context()); userID != uuid.Nil {
			payload["user_id"] = userID.String()
		}
		if role := middleware.RoleFromContext(r.Context()); role != "" {
			payload["role"] = role.String()
		}
		responses.WriteSuccess(w, payload)
	}
}
