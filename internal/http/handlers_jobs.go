package http

import (
	"context"
	"net/http"
)

type recordedResponse struct {
	Ref string `json:"ref"`
}

func (s *Server) handleRecordCompletedJob(w http.ResponseWriter, r *http.Request) {
	var req completedJobRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	job, err := req.toDomain()
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := identity(r)
	ref, err := s.jobs.RecordCompletedJob(ctx, userID, job)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, recordedResponse{Ref: ref})
}

func (s *Server) handleRecordPostedJob(w http.ResponseWriter, r *http.Request) {
	var req postedJobRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	job, err := req.toDomain()
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := identity(r)
	ref, err := s.jobs.RecordPostedJob(ctx, userID, job, sanitizeInput(req.Category))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, recordedResponse{Ref: ref})
}

func (s *Server) handleRecordSpending(w http.ResponseWriter, r *http.Request) {
	var req spendingRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	event, err := req.toDomain()
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := identity(r)
	ref, err := s.jobs.RecordSpending(ctx, userID, event)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, recordedResponse{Ref: ref})
}
