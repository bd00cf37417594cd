package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/quickaid/quickaid/internal/store"
)

// handleOnboard completes the profile after first login. All fields are
// required; once Phone is set the OAuth callback starts routing the user to
// the dashboard instead of back here.
func (s *Server) handleOnboard(w http.ResponseWriter, r *http.Request) {
	acct := AccountFrom(r)

	var req struct {
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		DOB     string `json:"dob"`
		Address string `json:"address"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input data")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.DOB = strings.TrimSpace(req.DOB)
	req.Address = strings.TrimSpace(req.Address)
	if req.Name == "" || req.Phone == "" || req.DOB == "" || req.Address == "" {
		writeError(w, http.StatusBadRequest, "Invalid input data")
		return
	}
	dob, ok := parseDOB(req.DOB)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid input data")
		return
	}

	_, err := s.Store.Update(r.Context(), acct.PublicID, store.Update{
		Name:    &req.Name,
		Phone:   &req.Phone,
		DOB:     dob,
		Address: &req.Address,
	})
	if err != nil {
		slog.Error("onboarding account", "account", acct.PublicID, "err", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeMessage(w, http.StatusOK, "User onboarded successfully")
}
