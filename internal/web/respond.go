package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/quickaid/quickaid/internal/store"
)

// All responses use the envelope the QuickAid client expects:
// success {"status":"success", ...} and error
// {"status":"error","error":{"code":N,"message":...}}.

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"status":  "success",
		"message": message,
	})
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{
		"status": "success",
		"data":   data,
	})
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]any{
		"status": "error",
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

// accountJSON is the public shape of an account. "pfp" is the avatar field
// name the client has always used.
func accountJSON(acct *store.Account) map[string]any {
	var dob any
	if acct.DOB != nil {
		dob = acct.DOB.Format(time.RFC3339)
	}
	return map[string]any{
		"id":        acct.PublicID,
		"pfp":       acct.AvatarURL,
		"name":      acct.Name,
		"email":     acct.Email,
		"phone":     acct.Phone,
		"address":   acct.Address,
		"dob":       dob,
		"gender":    acct.Gender,
		"createdAt": acct.CreatedAt.Format(time.RFC3339),
		"updatedAt": acct.UpdatedAt.Format(time.RFC3339),
	}
}
