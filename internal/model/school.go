package model

import (
	"strings"
	"time"
)

// Schema field keys emitted by the model and persisted per record.
const (
	FieldVenue               = "venue"
	FieldStartDate           = "start_date"
	FieldEndDate             = "end_date"
	FieldApplicationDeadline = "application_deadline"
	FieldRegistrationStatus  = "registration_status"
	FieldDescription         = "description"
)

// SchemaFields lists the six extraction fields in schema order.
var SchemaFields = []string{
	FieldVenue,
	FieldStartDate,
	FieldEndDate,
	FieldApplicationDeadline,
	FieldRegistrationStatus,
	FieldDescription,
}

// DateFields lists the schema fields holding ISO-8601 dates.
var DateFields = []string{
	FieldStartDate,
	FieldEndDate,
	FieldApplicationDeadline,
}

// DescriptionSlots is the fixed number of description sentences.
const DescriptionSlots = 3

// Registration statuses.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Source is one curated school page.
type Source struct {
	Name string `json:"name" yaml:"name"`
	Link string `json:"link" yaml:"link"`
}

// Fields holds the normalized model output for one page. Nil means the
// value is unknown.
type Fields struct {
	Venue               *string
	StartDate           *string
	EndDate             *string
	ApplicationDeadline *string
	RegistrationStatus  *string
	Description         [DescriptionSlots]*string
}

// Map renders the fields in the shape the model is asked to produce, with
// explicit nils for unknown values.
func (f Fields) Map() map[string]any {
	desc := make([]any, DescriptionSlots)
	for i, s := range f.Description {
		desc[i] = ptrAny(s)
	}
	return map[string]any{
		FieldVenue:               ptrAny(f.Venue),
		FieldStartDate:           ptrAny(f.StartDate),
		FieldEndDate:             ptrAny(f.EndDate),
		FieldApplicationDeadline: ptrAny(f.ApplicationDeadline),
		FieldRegistrationStatus:  ptrAny(f.RegistrationStatus),
		FieldDescription:         desc,
	}
}

// DescriptionText joins the non-nil description sentences with spaces.
func (f Fields) DescriptionText() string {
	parts := make([]string, 0, DescriptionSlots)
	for _, s := range f.Description {
		if s != nil && *s != "" {
			parts = append(parts, *s)
		}
	}
	return strings.Join(parts, " ")
}

// Record is the persisted row for one source, keyed by Link.
type Record struct {
	Name                string    `json:"name"`
	Link                string    `json:"link"`
	Venue               *string   `json:"venue"`
	StartDate           *string   `json:"start_date"`
	EndDate             *string   `json:"end_date"`
	ApplicationDeadline *string   `json:"application_deadline"`
	RegistrationStatus  *string   `json:"registration_status"`
	Description         *string   `json:"description"`
	UpdatedAt           time.Time `json:"-"`
}

// NewRecord builds the persisted record for a source from normalized fields.
func NewRecord(src Source, f Fields) Record {
	rec := Record{
		Name:                src.Name,
		Link:                src.Link,
		Venue:               f.Venue,
		StartDate:           f.StartDate,
		EndDate:             f.EndDate,
		ApplicationDeadline: f.ApplicationDeadline,
		RegistrationStatus:  f.RegistrationStatus,
	}
	if d := f.DescriptionText(); d != "" {
		rec.Description = &d
	}
	return rec
}

// Str returns a pointer to s, or nil if s is empty.
func Str(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptrAny(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
