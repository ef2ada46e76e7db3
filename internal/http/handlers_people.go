package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"quattrini/internal/core"
	"quattrini/internal/log"
)

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().JSON(list(s.tracker.People())).Write(w)
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var req personRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	p, err := s.tracker.AddPerson(r.Context(), sanitizeInput(req.Name), sanitizeInput(req.IconURL))
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	s.mutated(r, log.OpCreate, "person", p.ID)
	NewJSONResponse().Status(http.StatusCreated).JSON(p).Write(w)
}

func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	var req personRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	p, err := s.tracker.UpdatePerson(r.Context(), core.Person{
		ID:      pathParam(r, "id"),
		Name:    sanitizeInput(req.Name),
		IconURL: sanitizeInput(req.IconURL),
	})
	if err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	s.mutated(r, log.OpUpdate, "person", p.ID)
	NewJSONResponse().JSON(p).Write(w)
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if err := s.tracker.DeletePerson(r.Context(), id); err != nil {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	s.mutated(r, log.OpDelete, "person", id)
	NoContent().Write(w)
}

type balanceView struct {
	Person  core.Person     `json:"person"`
	Balance decimal.Decimal `json:"balance"`
	Display string          `json:"display"`
}

// handleBalances lists who owes what. A positive balance means the person
// owes the user.
func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	currency := s.tracker.Currency()
	balances := s.tracker.Balances()
	out := make([]balanceView, 0, len(balances))
	for _, b := range balances {
		out = append(out, balanceView{
			Person:  b.Person,
			Balance: b.Balance,
			Display: core.FormatSigned(currency, b.Balance),
		})
	}
	NewJSONResponse().JSON(out).Write(w)
}

// handleSettleUp records the settlement of a person's balance. The amount
// carries the balance's sign: positive when the person owed the user.
func (s *Server) handleSettleUp(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	tx, err := s.tracker.SettleUp(r.Context(), pathParam(r, "id"), req.Amount)
	if err != nil {
		s.fail(w, r, log.OpSettle, err)
		return
	}
	s.mutated(r, log.OpSettle, "transaction", tx.ID)
	NewJSONResponse().Status(http.StatusCreated).JSON(tx).Write(w)
}
