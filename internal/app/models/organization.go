package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// CurrentOfficersLabel selects the live officer list instead of a history bucket
const CurrentOfficersLabel = "Current Officers"

// Organization represents a college organization or a branch nested inside one
type Organization struct {
	ID             int64                `json:"id"`
	Name           string               `json:"name"`
	IsBranch       bool                 `json:"is_branch"`
	LogoPath       string               `json:"logo_path"`
	Brief          string               `json:"brief"`
	Description    string               `json:"description"`
	Branches       []Organization       `json:"branches"`
	Officers       []Officer            `json:"officers"`
	OfficerHistory map[string][]Officer `json:"officer_history"`
	Members        []Member             `json:"members"`
	Applicants     []Applicant          `json:"applicants"`
	Events         []Event              `json:"events"`

	// Extra keeps keys this service does not model (e.g. "details") so a save does not drop them
	Extra map[string]json.RawMessage `json:"-"`
}

// organizationFields is the alias used to bypass the custom (un)marshalers
type organizationFields Organization

var knownOrganizationKeys = map[string]struct{}{
	"id": {}, "name": {}, "is_branch": {}, "logo_path": {}, "brief": {}, "description": {},
	"branches": {}, "officers": {}, "officer_history": {}, "members": {}, "applicants": {}, "events": {},
}

// UnmarshalJSON decodes the known fields and stashes the rest in Extra
func (o *Organization) UnmarshalJSON(data []byte) error {
	var fields organizationFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key := range knownOrganizationKeys {
		delete(raw, key)
	}
	if len(raw) > 0 {
		fields.Extra = raw
	} else {
		fields.Extra = nil
	}

	*o = Organization(fields)
	return nil
}

// MarshalJSON writes the known fields followed by any preserved extra keys
func (o Organization) MarshalJSON() ([]byte, error) {
	fields := organizationFields(o)
	if fields.Branches == nil {
		fields.Branches = []Organization{}
	}
	if fields.Officers == nil {
		fields.Officers = []Officer{}
	}
	if fields.OfficerHistory == nil {
		fields.OfficerHistory = map[string][]Officer{}
	}
	if fields.Members == nil {
		fields.Members = []Member{}
	}
	if fields.Applicants == nil {
		fields.Applicants = []Applicant{}
	}
	if fields.Events == nil {
		fields.Events = []Event{}
	}

	known, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	if len(o.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]json.RawMessage, len(knownOrganizationKeys)+len(o.Extra))
	for key, value := range o.Extra {
		merged[key] = value
	}
	var knownMap map[string]json.RawMessage
	if err := json.Unmarshal(known, &knownMap); err != nil {
		return nil, fmt.Errorf("re-decoding organization %d: %w", o.ID, err)
	}
	for key, value := range knownMap {
		merged[key] = value
	}
	return json.Marshal(merged)
}

// MergeFrom overwrites o with src field by field. Extra keys present only in o survive,
// which mirrors a shallow dict update of the stored record.
func (o *Organization) MergeFrom(src *Organization) {
	extra := make(map[string]json.RawMessage, len(o.Extra)+len(src.Extra))
	for key, value := range o.Extra {
		extra[key] = value
	}
	for key, value := range src.Extra {
		extra[key] = value
	}

	*o = src.Clone()
	if len(extra) > 0 {
		o.Extra = extra
	} else {
		o.Extra = nil
	}
}

// Clone returns a deep copy so callers never alias the repository's slices
func (o Organization) Clone() Organization {
	out := o
	if o.Branches != nil {
		out.Branches = make([]Organization, len(o.Branches))
		for i := range o.Branches {
			out.Branches[i] = o.Branches[i].Clone()
		}
	}
	out.Officers = append([]Officer(nil), o.Officers...)
	if o.OfficerHistory != nil {
		out.OfficerHistory = make(map[string][]Officer, len(o.OfficerHistory))
		for semester, officers := range o.OfficerHistory {
			out.OfficerHistory[semester] = append([]Officer(nil), officers...)
		}
	}
	out.Members = append([]Member(nil), o.Members...)
	out.Applicants = append([]Applicant(nil), o.Applicants...)
	out.Events = append([]Event(nil), o.Events...)
	if o.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(o.Extra))
		for key, value := range o.Extra {
			out.Extra[key] = append(json.RawMessage(nil), value...)
		}
	}
	return out
}

// HasOfficer reports whether name appears in the current officer list
func (o *Organization) HasOfficer(name string) bool {
	for _, officer := range o.Officers {
		if officer.Name == name {
			return true
		}
	}
	return false
}

// ReferencesAsset reports whether the logo or any officer photo or card image,
// current or historical, points at path
func (o *Organization) ReferencesAsset(path string) bool {
	if path == "" {
		return false
	}
	if o.LogoPath == path {
		return true
	}
	uses := func(officers []Officer) bool {
		for _, officer := range officers {
			if officer.PhotoPath == path || officer.CardImagePath == path {
				return true
			}
		}
		return false
	}
	if uses(o.Officers) {
		return true
	}
	for _, officers := range o.OfficerHistory {
		if uses(officers) {
			return true
		}
	}
	return false
}

// Semesters returns the officer history labels in sorted order
func (o *Organization) Semesters() []string {
	semesters := make([]string, 0, len(o.OfficerHistory))
	for semester := range o.OfficerHistory {
		semesters = append(semesters, semester)
	}
	sort.Strings(semesters)
	return semesters
}

// OfficersFor returns the officer roster for a semester label. An empty label or
// CurrentOfficersLabel selects the current officers; unknown labels yield nil.
func (o *Organization) OfficersFor(semester string) []Officer {
	if semester == "" || semester == CurrentOfficersLabel {
		return o.Officers
	}
	return o.OfficerHistory[semester]
}

// ReplaceOfficer swaps every record named updated.Name, in the current list and in
// every history bucket, and reports how many records changed.
func (o *Organization) ReplaceOfficer(updated Officer) int {
	replaced := 0
	for i := range o.Officers {
		if o.Officers[i].Name == updated.Name {
			o.Officers[i] = updated
			replaced++
		}
	}
	for semester, officers := range o.OfficerHistory {
		for i := range officers {
			if officers[i].Name == updated.Name {
				o.OfficerHistory[semester][i] = updated
				replaced++
			}
		}
	}
	return replaced
}

// FindOrganization returns a pointer into orgs for the organization or branch with the given id
func FindOrganization(orgs []Organization, id int64) *Organization {
	for i := range orgs {
		if orgs[i].ID == id {
			return &orgs[i]
		}
	}
	for i := range orgs {
		for j := range orgs[i].Branches {
			if orgs[i].Branches[j].ID == id {
				return &orgs[i].Branches[j]
			}
		}
	}
	return nil
}

// Event is a read-only organization event
type Event struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	Description string `json:"description"`
}
