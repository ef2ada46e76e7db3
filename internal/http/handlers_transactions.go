package http

import (
	"net/http"

	"quattrini/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	NewJSONResponse().JSON(list(s.tracker.Transactions(f))).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, ok := s.tracker.Transaction(pathParam(r, "id"))
	if !ok {
		NotFoundError("transaction not found").Write(w)
		return
	}
	NewJSONResponse().JSON(tx).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	tx, err := req.toTransaction(s.tracker.Currency())
	if err == nil {
		tx, err = s.tracker.AddTransaction(r.Context(), tx)
	}
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		log.NewFields().
			WithTransaction(tx.ID, tx.Amount.StringFixed(2), tx.Currency, tx.Category).
			WithOperation(log.OpCreate).
			ToSlice()...)
	NewJSONResponse().Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+tx.ID).
		JSON(tx).
		Write(w)
}

// handleUpdateTransaction replaces the writable fields. Whether the record
// is a materialized instance, and of which template, is kept from the stored copy.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	existing, ok := s.tracker.Transaction(id)
	if !ok {
		NotFoundError("transaction not found").Write(w)
		return
	}
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	tx, err := req.toTransaction(existing.Currency)
	if err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	tx.ID = id
	tx.IsRecurringInstance = existing.IsRecurringInstance
	tx.ParentID = existing.ParentID

	updated, err := s.tracker.UpdateTransaction(r.Context(), tx)
	if err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	s.mutated(r, log.OpUpdate, "transaction", id)
	NewJSONResponse().JSON(updated).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if err := s.tracker.DeleteTransaction(r.Context(), id); err != nil {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	s.mutated(r, log.OpDelete, "transaction", id)
	NoContent().Write(w)
}

func (s *Server) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().JSON(list(s.tracker.Subscriptions())).Write(w)
}

func (s *Server) handleUpcomingSubscriptions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	NewJSONResponse().JSON(list(s.tracker.UpcomingSubscriptions(limit))).Write(w)
}

func (s *Server) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if err := s.tracker.CancelSubscription(r.Context(), id); err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	s.mutated(r, log.OpUpdate, "subscription", id)
	NoContent().Write(w)
}
