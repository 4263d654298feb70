package http

import (
	"net/http"

	"github.com/codehaven/licensing-service/internal/application"
)

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	var req application.VerifyRequest
	if err := decodeBody(r, &req); err != nil {
		writeVerifyError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	req.IPAddress = readIP(r)

	res, err := h.service.Verify(r.Context(), req)
	if err != nil {
		status, code, msg := mapDomainError(err)
		logHTTPOperationError(r.Context(), "http_verify", status, code, msg, err)
		writeVerifyError(w, status, code, msg)
		return
	}
	writeVerifySuccess(w, res)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req application.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	req.IPAddress = readIP(r)

	res, err := h.service.Register(r.Context(), req)
	if err != nil {
		status, code, msg := mapDomainError(err)
		logHTTPOperationError(r.Context(), "http_register", status, code, msg, err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	var req application.StatusRequest
	if r.Method == http.MethodGet {
		req.PurchaseCode = r.URL.Query().Get("purchase_code")
		req.ProductSlug = r.URL.Query().Get("product_slug")
	} else if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	res, err := h.service.Status(r.Context(), req)
	if err != nil {
		status, code, msg := mapDomainError(err)
		logHTTPOperationError(r.Context(), "http_status", status, code, msg, err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) bulkVerify(w http.ResponseWriter, r *http.Request) {
	var req application.BulkVerifyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	req.IPAddress = readIP(r)

	res, err := h.service.BulkVerify(r.Context(), req)
	if err != nil {
		status, code, msg := mapDomainError(err)
		logHTTPOperationError(r.Context(), "http_bulk_verify", status, code, msg, err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) statistics(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Statistics(r.Context())
	if err != nil {
		status, code, msg := mapDomainError(err)
		logHTTPOperationError(r.Context(), "http_statistics", status, code, msg, err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}
