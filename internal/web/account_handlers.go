package web

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/quickaid/quickaid/internal/store"
)

func (s *Server) handleViewAccount(w http.ResponseWriter, r *http.Request) {
	acct := AccountFrom(r)
	writeData(w, http.StatusOK, map[string]any{"user": accountJSON(acct)})
}

type profileUpdateRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	DOB     *string `json:"dob"`
	Gender  *string `json:"gender"`
}

func parseDOB(raw string) (*time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, true
		}
	}
	return nil, false
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	acct := AccountFrom(r)

	var req profileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input data")
		return
	}

	upd := store.Update{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if req.DOB != nil {
		dob, ok := parseDOB(*req.DOB)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid input data")
			return
		}
		upd.DOB = dob
	}
	if req.Gender != nil {
		switch *req.Gender {
		case "male", "female", "other":
			upd.Gender = req.Gender
		default:
			writeError(w, http.StatusBadRequest, "Invalid input data")
			return
		}
	}

	updated, err := s.Store.Update(r.Context(), acct.PublicID, upd)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		slog.Error("updating profile", "account", acct.PublicID, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Profile updated successfully",
		"data":    map[string]any{"user": accountJSON(updated)},
	})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	acct := AccountFrom(r)

	clearSessionCookie(w, s.Secure)

	err := s.Store.Delete(r.Context(), acct.PublicID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		slog.Error("deleting account", "account", acct.PublicID, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete account")
		return
	}
	writeMessage(w, http.StatusOK, "Account deleted successfully")
}
