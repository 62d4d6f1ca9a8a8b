// Package wizard holds the multi-step filing flows as declarative schemas.
// The same schema drives the step-by-step session used by clients and the
// server-side validation of submitted filings, so the field rules exist in
// exactly one place.
package wizard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"surefile/pkg/domain"
)

// Field is one wizard input.
type Field struct {
	Name     string
	Required bool
}

// Step groups the fields collected on one screen.
type Step struct {
	Title  string
	Fields []Field
}

// Form is a complete linear wizard definition.
type Form struct {
	Name       string
	FilingType string
	Steps      []Step
}

// ComplianceForm is the 5-step annual compliance flow.
var ComplianceForm = Form{
	Name:       "compliance",
	FilingType: "ITR",
	Steps: []Step{
		{Title: "Business Details", Fields: []Field{
			{Name: "businessName", Required: true},
			{Name: "businessType", Required: true},
			{Name: "turnover", Required: true},
		}},
		{Title: "Filing Period", Fields: []Field{
			{Name: "fy", Required: true},
			{Name: "period", Required: true},
		}},
		{Title: "Income", Fields: []Field{
			{Name: "sales", Required: true},
			{Name: "otherIncome"},
		}},
		{Title: "Deductions", Fields: []Field{
			{Name: "expenses", Required: true},
			{Name: "tds"},
		}},
		{Title: "Review"},
	},
}

// GSTReturnForm is the 6-step monthly GST return flow. The documents step
// is a mock upload; it records name/url pairs only.
var GSTReturnForm = Form{
	Name:       "gst-return",
	FilingType: "GSTR-1",
	Steps: []Step{
		{Title: "Confirm Period", Fields: []Field{
			{Name: "period", Required: true},
		}},
		{Title: "Upload Documents"},
		{Title: "Sales & Tax", Fields: []Field{
			{Name: "sales", Required: true},
			{Name: "tax", Required: true},
		}},
		{Title: "Input Tax Credit", Fields: []Field{
			{Name: "itc", Required: true},
		}},
		{Title: "Tax Payment", Fields: []Field{
			{Name: "challanId"},
		}},
		{Title: "Review & Submit"},
	},
}

// FormForFilingType picks the schema used to validate a submitted filing.
func FormForFilingType(filingType string) Form {
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(filingType)), "GSTR") {
		return GSTReturnForm
	}
	return ComplianceForm
}

// MissingFieldsError reports which required fields block a transition.
type MissingFieldsError struct {
	Step    int
	Missing []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("step %d missing required fields: %s", e.Step, strings.Join(e.Missing, ", "))
}

// Validate checks every required field of the form against the supplied
// values. Used server-side on submitted filings.
func (f Form) Validate(values map[string]string) error {
	missing := make([]string, 0)
	for _, step := range f.Steps {
		for _, field := range step.Fields {
			if field.Required && strings.TrimSpace(values[field.Name]) == "" {
				missing = append(missing, field.Name)
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &MissingFieldsError{Missing: missing}
	}
	return nil
}

// Session is a linear walk through a form. Steps are 1-based.
type Session struct {
	form   Form
	step   int
	values map[string]string
}

// NewSession starts a session at step 1 with no values.
func NewSession(form Form) *Session {
	return &Session{
		form:   form,
		step:   1,
		values: make(map[string]string),
	}
}

// Step returns the current 1-based step number.
func (s *Session) Step() int { return s.step }

// TotalSteps returns the number of steps in the form.
func (s *Session) TotalSteps() int { return len(s.form.Steps) }

// Set records a field value.
func (s *Session) Set(field, value string) {
	s.values[field] = value
}

// Value returns a recorded field value.
func (s *Session) Value(field string) string {
	return s.values[field]
}

// MissingFields lists required fields of the current step that are empty.
func (s *Session) MissingFields() []string {
	step := s.form.Steps[s.step-1]
	missing := make([]string, 0)
	for _, field := range step.Fields {
		if field.Required && strings.TrimSpace(s.values[field.Name]) == "" {
			missing = append(missing, field.Name)
		}
	}
	return missing
}

// Next advances to the following step when the current step's required
// fields are filled. On the terminal step it reports done=true instead of
// advancing; the caller then builds the filing record.
func (s *Session) Next() (done bool, err error) {
	if missing := s.MissingFields(); len(missing) > 0 {
		return false, &MissingFieldsError{Step: s.step, Missing: missing}
	}
	if s.step == len(s.form.Steps) {
		return true, nil
	}
	s.step++
	return false, nil
}

// Back decrements the step without re-validation. From step 1 it reports
// exited=true and the wizard is abandoned.
func (s *Session) Back() (exited bool) {
	if s.step == 1 {
		return true
	}
	s.step--
	return false
}

// Filing flattens the accumulated values into one record. Status is the
// caller's choice; Submitted filings get a submission timestamp.
func (s *Session) Filing(userID string, status domain.FilingStatus, now time.Time) domain.Filing {
	f := domain.Filing{
		UserID:     userID,
		FilingType: s.form.FilingType,
		Period:     s.values["period"],
		Status:     status,
		Data: domain.FilingData{
			Sales:     s.values["sales"],
			Tax:       s.values["tax"],
			ITC:       s.values["itc"],
			ChallanID: s.values["challanId"],
		},
		CreatedAt: now,
	}
	if status == domain.FilingSubmitted {
		submitted := now
		f.SubmittedAt = &submitted
	}
	return f
}

// NetPayable is tax minus input tax credit, floored at zero. Empty or
// non-numeric input counts as zero, matching the lenient client behavior.
func NetPayable(tax, itc string) decimal.Decimal {
	return floorZero(amount(tax).Sub(amount(itc)))
}

// NetTaxable is sales minus expenses, floored at zero.
func NetTaxable(sales, expenses string) decimal.Decimal {
	return floorZero(amount(sales).Sub(amount(expenses)))
}

func amount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
