package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) adminSuspend(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "product_slug")
	code := chi.URLParam(r, "purchase_code")
	if err := h.service.Suspend(r.Context(), slug, code); err != nil {
		status, errCode, msg := mapDomainError(err)
		logHTTPOperationError(r.Context(), "http_admin_suspend", status, errCode, msg, err)
		writeError(w, status, errCode, msg)
		return
	}
	writeMessage(w, http.StatusOK, "License suspended")
}

func (h *Handler) adminResume(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "product_slug")
	code := chi.URLParam(r, "purchase_code")
	if err := h.service.Resume(r.Context(), slug, code); err != nil {
		status, errCode, msg := mapDomainError(err)
		logHTTPOperationError(r.Context(), "http_admin_resume", status, errCode, msg, err)
		writeError(w, status, errCode, msg)
		return
	}
	writeMessage(w, http.StatusOK, "License resumed")
}

func (h *Handler) adminRevoke(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "product_slug")
	code := chi.URLParam(r, "purchase_code")
	if err := h.service.Revoke(r.Context(), slug, code); err != nil {
		status, errCode, msg := mapDomainError(err)
		logHTTPOperationError(r.Context(), "http_admin_revoke", status, errCode, msg, err)
		writeError(w, status, errCode, msg)
		return
	}
	writeMessage(w, http.StatusOK, "License revoked")
}
