// Package http provides the JSON API over the tracker.
//
// This file implements utilities for parsing and validating request data:
// JSON bodies, filter query strings and the transaction payload.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"quattrini/internal/core"
	"quattrini/internal/services"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON document into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON: trailing data")
	}
	return nil
}

// parseFilter builds a filter from query parameters:
// currency, category, tag, start, end, tax and q.
func parseFilter(query url.Values) (services.Filter, error) {
	f := services.Filter{
		Currency:   sanitizeInput(query.Get("currency")),
		Category:   sanitizeInput(query.Get("category")),
		Tag:        sanitizeInput(query.Get("tag")),
		SearchTerm: sanitizeInput(query.Get("q")),
		TaxStatus:  services.TaxAll,
	}

	for _, bound := range []struct {
		name string
		dst  **core.Date
	}{
		{"start", &f.DateRange.Start},
		{"end", &f.DateRange.End},
	} {
		v := strings.TrimSpace(query.Get(bound.name))
		if v == "" {
			continue
		}
		d, err := core.ParseDate(v)
		if err != nil {
			return services.Filter{}, fmt.Errorf("%s: %w", bound.name, err)
		}
		*bound.dst = &d
	}

	switch tax := services.TaxStatus(strings.TrimSpace(query.Get("tax"))); tax {
	case "", services.TaxAll:
	case services.TaxDeductible, services.TaxNonDeductible:
		f.TaxStatus = tax
	default:
		return services.Filter{}, fmt.Errorf("tax: unknown status %q", tax)
	}
	return f, nil
}

// parseLimit reads an optional positive "limit" query parameter.
func parseLimit(query url.Values) (int, error) {
	v := strings.TrimSpace(query.Get("limit"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("limit: must be a positive integer, got %q", v)
	}
	return n, nil
}

// amountInput accepts a JSON number or string using either decimal
// separator. Parsing is deferred so a bad amount is reported as a
// validation failure rather than malformed JSON.
type amountInput string

func (a *amountInput) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = amountInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a number or a string: %w", err)
	}
	*a = amountInput(n.String())
	return nil
}

// Decimal returns the positive amount rounded to cents.
func (a amountInput) Decimal() (decimal.Decimal, error) {
	d, err := core.ParseAmount(string(a))
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount %q: %w", string(a), err)
	}
	return d, nil
}

// transactionRequest is the writable part of a transaction.
type transactionRequest struct {
	Type            core.TransactionType `json:"type"`
	Amount          amountInput          `json:"amount"`
	Currency        string               `json:"currency"`
	Category        string               `json:"category"`
	Date            core.Date            `json:"date"`
	Description     string               `json:"description"`
	Notes           string               `json:"notes"`
	Recurring       core.Recurrence      `json:"recurring"`
	IsTaxDeductible bool                 `json:"isTaxDeductible"`
	PayerID         string               `json:"payerId"`
	SplitDetails    []core.SplitDetail   `json:"splitDetails"`
	Tags            []string             `json:"tags"`
}

// toTransaction sanitizes free text. A missing currency falls back to
// the active one.
func (req transactionRequest) toTransaction(activeCurrency string) (core.Transaction, error) {
	amount, err := req.Amount.Decimal()
	if err != nil {
		return core.Transaction{}, err
	}
	currency := sanitizeInput(req.Currency)
	if currency == "" {
		currency = activeCurrency
	}
	return core.Transaction{
		Type:            req.Type,
		Amount:          amount,
		Currency:        currency,
		Category:        sanitizeInput(req.Category),
		Date:            req.Date,
		Description:     sanitizeInput(req.Description),
		Notes:           sanitizeInput(req.Notes),
		Recurring:       req.Recurring,
		IsTaxDeductible: req.IsTaxDeductible,
		PayerID:         sanitizeInput(req.PayerID),
		SplitDetails:    req.SplitDetails,
		Tags:            sanitizeAll(req.Tags),
	}, nil
}

type personRequest struct {
	Name    string `json:"name"`
	IconURL string `json:"iconUrl"`
}

// amountRequest carries a signed amount, so it bypasses amountInput.
type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type goalRequest struct {
	Category string      `json:"category"`
	Amount   amountInput `json:"amount"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type valueRequest struct {
	Value string `json:"value"`
}
