package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// MemberStatusActive is the status given to accepted applicants
const MemberStatusActive = "Active"

// Member is stored as the positional record [name, position, status, joined_date, id].
// Legacy records may carry extra values between joined_date and the id; they are kept
// in Extra and written back in place.
type Member struct {
	ID         string
	Name       string
	Position   string
	Status     string
	JoinedDate string
	Extra      []string
}

// Applicant is stored as the positional record [name, position, applied_date, id],
// with any legacy extra values kept in Extra ahead of the id.
type Applicant struct {
	ID          string
	Name        string
	Position    string
	AppliedDate string
	Extra       []string
}

// Fields returns the searchable positional values of the member
func (m Member) Fields() []string {
	return []string{m.Name, m.Position, m.Status, m.JoinedDate}
}

// Key returns the durable key used to resolve a displayed row back to this record
func (m Member) Key() string { return m.ID }

// MarshalJSON writes the positional form
func (m Member) MarshalJSON() ([]byte, error) {
	return json.Marshal(encodePositional([]string{m.Name, m.Position, m.Status, m.JoinedDate}, m.Extra, m.ID))
}

// UnmarshalJSON accepts legacy four-element records without an id
func (m *Member) UnmarshalJSON(data []byte) error {
	rec, err := decodePositional(data, 4)
	if err != nil {
		return fmt.Errorf("member record: %w", err)
	}
	*m = Member{
		Name:       rec.fields[0],
		Position:   rec.fields[1],
		Status:     rec.fields[2],
		JoinedDate: rec.fields[3],
		Extra:      rec.extra,
		ID:         rec.id,
	}
	return nil
}

// Fields returns the searchable positional values of the applicant
func (a Applicant) Fields() []string {
	return []string{a.Name, a.Position, a.AppliedDate}
}

// Key returns the durable key used to resolve a displayed row back to this record
func (a Applicant) Key() string { return a.ID }

// MarshalJSON writes the positional form
func (a Applicant) MarshalJSON() ([]byte, error) {
	return json.Marshal(encodePositional([]string{a.Name, a.Position, a.AppliedDate}, a.Extra, a.ID))
}

// UnmarshalJSON accepts legacy records with fewer or more fields
func (a *Applicant) UnmarshalJSON(data []byte) error {
	rec, err := decodePositional(data, 3)
	if err != nil {
		return fmt.Errorf("applicant record: %w", err)
	}
	*a = Applicant{
		Name:        rec.fields[0],
		Position:    rec.fields[1],
		AppliedDate: rec.fields[2],
		Extra:       rec.extra,
		ID:          rec.id,
	}
	return nil
}

// ToMember turns an accepted applicant into an active member joined on the given date
func (a Applicant) ToMember(joinedDate string) Member {
	return Member{
		ID:         uuid.NewString(),
		Name:       a.Name,
		Position:   a.Position,
		Status:     MemberStatusActive,
		JoinedDate: joinedDate,
	}
}

type positionalRecord struct {
	fields []string
	extra  []string
	id     string
}

// decodePositional reads a JSON array of dataSize values followed by an id.
// Non-string scalars are stringified the way they would be displayed and missing
// trailing fields are empty. A record exactly one longer than dataSize ends in its
// id. A longer record is legacy: its last value is the id only when it is a UUID,
// and everything else past the data fields lands in extra.
func decodePositional(data []byte, dataSize int) (positionalRecord, error) {
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return positionalRecord{}, err
	}
	if len(raw) == 0 {
		return positionalRecord{}, fmt.Errorf("empty record")
	}

	values := make([]string, len(raw))
	for i, v := range raw {
		values[i] = positionalString(v)
	}

	rec := positionalRecord{fields: make([]string, dataSize)}
	copy(rec.fields, values)
	switch {
	case len(values) <= dataSize:
	case len(values) == dataSize+1:
		rec.id = values[dataSize]
	default:
		rest := values[dataSize:]
		if last := rest[len(rest)-1]; isUUID(last) {
			rec.id = last
			rest = rest[:len(rest)-1]
		}
		rec.extra = append([]string(nil), rest...)
	}
	return rec, nil
}

func encodePositional(fields, extra []string, id string) []string {
	out := make([]string, 0, len(fields)+len(extra)+1)
	out = append(out, fields...)
	out = append(out, extra...)
	return append(out, id)
}

func positionalString(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// AssignMissingIDs gives every member and applicant without an id a fresh one,
// recursing into branches. It reports how many ids were generated.
func AssignMissingIDs(orgs []Organization) int {
	assigned := 0
	for i := range orgs {
		org := &orgs[i]
		for j := range org.Members {
			if org.Members[j].ID == "" {
				org.Members[j].ID = uuid.NewString()
				assigned++
			}
		}
		for j := range org.Applicants {
			if org.Applicants[j].ID == "" {
				org.Applicants[j].ID = uuid.NewString()
				assigned++
			}
		}
		assigned += AssignMissingIDs(org.Branches)
	}
	return assigned
}
