// Package handlers contains the HTTP handlers for the screening API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cogniscreen/cogniscreen/internal/database/models"
	"github.com/cogniscreen/cogniscreen/internal/server/response"
)

func getRequestID(r *http.Request) string {
	if requestID, ok := r.Context().Value("request_id").(string); ok {
		return requestID
	}
	return "unknown"
}

func getCurrentUser(ctx context.Context) *models.User {
	if user, ok := ctx.Value("current_user").(*models.User); ok {
		return user
	}
	return nil
}

func getPagination(ctx context.Context) (page, pageSize, offset int) {
	if pagination, ok := ctx.Value("pagination").(map[string]int); ok {
		return pagination["page"], pagination["page_size"], pagination["offset"]
	}
	return 1, 20, 0
}

// decodeJSON decodes the request body, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		response.NewResponseWriter(w, getRequestID(r)).BadRequest("Invalid request body", err.Error())
		return false
	}
	return true
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response.WriteError(w, getRequestID(r), http.StatusMethodNotAllowed,
		"METHOD_NOT_ALLOWED", "Method not allowed", nil)
}
