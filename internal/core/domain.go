package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	None    Recurrence = "none"
	Daily   Recurrence = "daily"
	Weekly  Recurrence = "weekly"
	Monthly Recurrence = "monthly"
)

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// SelfID is the participant identifier reserved for the tracker's own user.
const SelfID = "user"

const dateLayout = "2006-01-02"

type (
	TransactionType string
	Recurrence      string
	Severity        string

	// Date is a calendar date stored as UTC midnight.
	Date struct {
		time.Time
	}

	SplitDetail struct {
		PersonID string           `json:"personId"`
		Amount   *decimal.Decimal `json:"amount,omitempty"` // nil means equal share
	}

	Transaction struct {
		ID                  string          `json:"id"`
		Type                TransactionType `json:"type"`
		Amount              decimal.Decimal `json:"amount"`
		Currency            string          `json:"currency"`
		Category            string          `json:"category"`
		Date                Date            `json:"date"`
		Description         string          `json:"description"`
		Notes               string          `json:"notes,omitempty"`
		Recurring           Recurrence      `json:"recurring"`
		IsRecurringInstance bool            `json:"isRecurringInstance,omitempty"`
		ParentID            string          `json:"parentId,omitempty"`
		IsTaxDeductible     bool            `json:"isTaxDeductible,omitempty"`
		PayerID             string          `json:"payerId,omitempty"`
		SplitDetails        []SplitDetail   `json:"splitDetails,omitempty"`
		Tags                []string        `json:"tags,omitempty"`
	}

	Person struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		IconURL string `json:"iconUrl,omitempty"`
	}

	BudgetGoal struct {
		ID       string          `json:"id"`
		Category string          `json:"category"`
		Amount   decimal.Decimal `json:"amount"`
	}

	Alert struct {
		ID      string   `json:"id"`
		Kind    Severity `json:"type"`
		Message string   `json:"message"`
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrInvalidRecurrence = errors.New("invalid recurrence")
	ErrInvalidDate       = errors.New("invalid date")
	ErrEmptyCurrency     = errors.New("empty currency")
	ErrEmptyName         = errors.New("empty name")
	ErrEmptyCategory     = errors.New("empty category")
	ErrSplitTooFew       = errors.New("split needs at least two participants")
	ErrSplitMismatch     = errors.New("custom split does not add up to the total")
	ErrSplitDuplicate    = errors.New("split lists a participant twice")
	ErrSplitNegative     = errors.New("split share cannot be negative")
	ErrMissingPayer      = errors.New("split without payer")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrBuiltinCategory   = errors.New("built-in categories cannot be deleted")
)

// SplitTolerance is the largest accepted gap between custom split shares and the total.
var SplitTolerance = decimal.RequireFromString("0.01")

// FarFuture is returned as the next payment of anything that does not recur.
var FarFuture = NewDate(9999, 12, 31)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date t falls on in its own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate accepts "2006-01-02" or a full RFC3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(d), nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(ts), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// WallClock keeps t's wall-clock reading but moves it to UTC so it can be
// compared with Date values.
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// AddDays returns the date n calendar days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

// DaysUntil returns the number of whole days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int((other.Unix() - d.Unix()) / 86400)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (r Recurrence) IsValid() bool {
	switch r {
	case None, Daily, Weekly, Monthly:
		return true
	default:
		return false
	}
}

// IsTemplate reports whether t is an original recurring transaction.
func (t Transaction) IsTemplate() bool {
	return t.Recurring != "" && t.Recurring != None && !t.IsRecurringInstance
}

// IsSubscription reports whether t is an active recurring expense.
func (t Transaction) IsSubscription() bool {
	return t.Type == Expense && t.IsTemplate()
}

// HasTag reports whether tag is in t's tag set.
func (t Transaction) HasTag(tag string) bool {
	for _, v := range t.Tags {
		if v == tag {
			return true
		}
	}
	return false
}

// HasCustomSplit reports whether any participant carries an explicit share.
func (t Transaction) HasCustomSplit() bool {
	for _, s := range t.SplitDetails {
		if s.Amount != nil {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate tags and splits freely.
func (t Transaction) Clone() Transaction {
	c := t
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	if t.SplitDetails != nil {
		c.SplitDetails = make([]SplitDetail, len(t.SplitDetails))
		for i, s := range t.SplitDetails {
			c.SplitDetails[i] = SplitDetail{PersonID: s.PersonID}
			if s.Amount != nil {
				amt := *s.Amount
				c.SplitDetails[i].Amount = &amt
			}
		}
	}
	return c
}

func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Currency) == "" {
		return ErrEmptyCurrency
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if !t.Recurring.IsValid() {
		return ErrInvalidRecurrence
	}
	return t.validateSplit()
}

func (t Transaction) validateSplit() error {
	if len(t.SplitDetails) == 0 {
		return nil
	}
	if len(t.SplitDetails) < 2 {
		return ErrSplitTooFew
	}
	if strings.TrimSpace(t.PayerID) == "" {
		return ErrMissingPayer
	}
	seen := make(map[string]struct{}, len(t.SplitDetails))
	for _, s := range t.SplitDetails {
		if _, dup := seen[s.PersonID]; dup {
			return fmt.Errorf("%w: %s", ErrSplitDuplicate, s.PersonID)
		}
		seen[s.PersonID] = struct{}{}
	}
	if !t.HasCustomSplit() {
		return nil
	}
	total := decimal.Zero
	for _, s := range t.SplitDetails {
		if s.Amount == nil {
			continue
		}
		if s.Amount.IsNegative() {
			return fmt.Errorf("%w: %s has %s", ErrSplitNegative, s.PersonID, s.Amount.StringFixed(2))
		}
		total = total.Add(*s.Amount)
	}
	if total.Sub(t.Amount).Abs().GreaterThan(SplitTolerance) {
		return fmt.Errorf("%w: custom split amounts (%s) do not add up to the total transaction amount (%s)",
			ErrSplitMismatch, total.StringFixed(2), t.Amount.StringFixed(2))
	}
	return nil
}

func (g BudgetGoal) Validate() error {
	if strings.TrimSpace(g.Category) == "" {
		return ErrEmptyCategory
	}
	if !g.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// PersonName resolves id to a display name.
func PersonName(people []Person, id string) string {
	if id == SelfID {
		return "You"
	}
	for _, p := range people {
		if p.ID == id {
			return p.Name
		}
	}
	return "Unknown"
}
