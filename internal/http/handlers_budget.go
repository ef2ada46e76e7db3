package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"quattrini/internal/core"
	"quattrini/internal/log"
	"quattrini/internal/services"
)

type goalProgressView struct {
	Goal      core.BudgetGoal       `json:"goal"`
	Spent     decimal.Decimal       `json:"spent"`
	Progress  decimal.Decimal       `json:"progress"`
	Percent   int64                 `json:"percent"`
	Remaining decimal.Decimal       `json:"remaining"`
	Status    services.BudgetStatus `json:"status"`
}

type summaryView struct {
	Currency string `json:"currency"`
	core.Summary
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().JSON(list(s.tracker.Goals())).Write(w)
}

func (s *Server) handleSaveGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	amount, err := req.Amount.Decimal()
	var g core.BudgetGoal
	if err == nil {
		g, err = s.tracker.SaveGoal(r.Context(), sanitizeInput(req.Category), amount)
	}
	if err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	s.mutated(r, log.OpUpdate, "goal", g.ID)
	NewJSONResponse().JSON(g).Write(w)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if err := s.tracker.DeleteGoal(r.Context(), id); err != nil {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	s.mutated(r, log.OpDelete, "goal", id)
	NoContent().Write(w)
}

// handleBudgetReport lists this month's progress per goal, most spent first.
func (s *Server) handleBudgetReport(w http.ResponseWriter, r *http.Request) {
	s.cachedView(w, r, func() any {
		report := s.tracker.BudgetReport()
		out := make([]goalProgressView, 0, len(report))
		for _, p := range report {
			out = append(out, goalProgressView{
				Goal:      p.Goal,
				Spent:     p.Spent,
				Progress:  p.Progress,
				Percent:   p.Percent(),
				Remaining: p.Remaining(),
				Status:    p.Status(),
			})
		}
		return out
	})
}

// handleSummary totals the view selected by the same query parameters as
// the transaction list.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	s.cachedView(w, r, func() any {
		if f.Currency == "" {
			f.Currency = s.tracker.Currency()
		}
		return summaryView{Currency: f.Currency, Summary: s.tracker.Summary(f)}
	})
}
