package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyOrganization = `{
	"id": 7,
	"name": "Computer Society",
	"is_branch": false,
	"logo_path": "assets/logos/cs.png",
	"brief": "Coding club",
	"description": "We write code",
	"details": "Founded 2001",
	"branches": [{"id": 71, "name": "CS Robotics", "is_branch": true, "logo_path": "No Photo", "brief": "", "description": ""}],
	"officers": [{"name": "Ana", "position": "President", "photo_path": "a.png", "card_image_path": "a.png", "start_date": "07/08/2025"}],
	"officer_history": {"2024-2025 2nd": [{"name": "Ana", "position": "Secretary"}], "2023-2024 1st": []},
	"members": [["Ana", "President", "Active", "2024-06-01"], ["Bo", "Member", "Active", 2024]],
	"applicants": [["Cy", "Member"]],
	"events": [{"name": "Hackathon", "date": "2025-10-01", "description": "24h"}]
}`

func TestOrganization_DecodeLegacyRecords(t *testing.T) {
	var org Organization
	require.NoError(t, json.Unmarshal([]byte(legacyOrganization), &org))

	assert.Equal(t, int64(7), org.ID)
	require.Len(t, org.Members, 2)
	assert.Equal(t, "Ana", org.Members[0].Name)
	assert.Equal(t, "", org.Members[0].ID)
	assert.Equal(t, "2024", org.Members[1].JoinedDate, "numeric fields are stringified")
	require.Len(t, org.Applicants, 1)
	assert.Equal(t, "Member", org.Applicants[0].Position)
	assert.Equal(t, "", org.Applicants[0].AppliedDate)
	require.Len(t, org.Branches, 1)
	assert.True(t, org.Branches[0].IsBranch)
	assert.JSONEq(t, `"Founded 2001"`, string(org.Extra["details"]))
	assert.Equal(t, []string{"2023-2024 1st", "2024-2025 2nd"}, org.Semesters())
}

func TestOrganization_EncodeKeepsExtraAndIDs(t *testing.T) {
	var org Organization
	require.NoError(t, json.Unmarshal([]byte(legacyOrganization), &org))
	assert.Equal(t, 3, AssignMissingIDs([]Organization{org}))

	out, err := json.Marshal(org)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &raw))
	assert.JSONEq(t, `"Founded 2001"`, string(raw["details"]))

	var members [][]string
	require.NoError(t, json.Unmarshal(raw["members"], &members))
	require.Len(t, members, 2)
	assert.Len(t, members[0], 5)
	assert.NotEmpty(t, members[0][4])
	assert.Equal(t, []string{"Ana", "President", "Active", "2024-06-01"}, members[0][:4])
}

func TestOrganization_MergeFromIsShallowUpdate(t *testing.T) {
	disk := Organization{
		ID:    1,
		Name:  "Old",
		Brief: "old brief",
		Extra: map[string]json.RawMessage{"details": json.RawMessage(`"kept"`), "color": json.RawMessage(`"red"`)},
	}
	memory := Organization{
		ID:      1,
		Name:    "New",
		Members: []Member{{ID: "m1", Name: "Ana"}},
		Extra:   map[string]json.RawMessage{"color": json.RawMessage(`"green"`)},
	}

	disk.MergeFrom(&memory)

	assert.Equal(t, "New", disk.Name)
	assert.Equal(t, "", disk.Brief, "known fields are replaced wholesale")
	assert.Equal(t, []Member{{ID: "m1", Name: "Ana"}}, disk.Members)
	assert.JSONEq(t, `"kept"`, string(disk.Extra["details"]))
	assert.JSONEq(t, `"green"`, string(disk.Extra["color"]))

	memory.Members[0].Name = "changed"
	assert.Equal(t, "Ana", disk.Members[0].Name, "merge must not alias the source")
}

func TestOrganization_ReplaceOfficerEverywhere(t *testing.T) {
	org := Organization{
		Officers: []Officer{{Name: "Ana", Position: "President"}, {Name: "Bo", Position: "Treasurer"}},
		OfficerHistory: map[string][]Officer{
			"2024 1st": {{Name: "Ana", Position: "Secretary"}},
			"2023 2nd": {{Name: "Bo", Position: "Member"}},
		},
	}

	n := org.ReplaceOfficer(Officer{Name: "Ana", Position: "Adviser", StartDate: "01/02/2026"})

	assert.Equal(t, 2, n)
	assert.Equal(t, "Adviser", org.Officers[0].Position)
	assert.Equal(t, "Treasurer", org.Officers[1].Position)
	assert.Equal(t, "Adviser", org.OfficerHistory["2024 1st"][0].Position)
	assert.Equal(t, "Member", org.OfficerHistory["2023 2nd"][0].Position)
}

func TestOrganization_OfficersFor(t *testing.T) {
	org := Organization{
		Officers:       []Officer{{Name: "Ana"}},
		OfficerHistory: map[string][]Officer{"2024 1st": {{Name: "Bo"}}},
	}

	assert.Equal(t, "Ana", org.OfficersFor("")[0].Name)
	assert.Equal(t, "Ana", org.OfficersFor(CurrentOfficersLabel)[0].Name)
	assert.Equal(t, "Bo", org.OfficersFor("2024 1st")[0].Name)
	assert.Nil(t, org.OfficersFor("1999"))
}

func TestFindOrganization_SearchesBranches(t *testing.T) {
	orgs := []Organization{
		{ID: 1, Name: "A", Branches: []Organization{{ID: 11, Name: "A1"}}},
		{ID: 2, Name: "B"},
	}

	require.NotNil(t, FindOrganization(orgs, 2))
	branch := FindOrganization(orgs, 11)
	require.NotNil(t, branch)
	branch.Brief = "edited"
	assert.Equal(t, "edited", orgs[0].Branches[0].Brief, "pointer refers into the slice")
	assert.Nil(t, FindOrganization(orgs, 3))
}

func TestPrincipal_ViewRole(t *testing.T) {
	assert.Equal(t, ViewRoleFaculty, Principal{PrimaryRole: PrimaryRoleFaculty}.ViewRole())
	assert.Equal(t, ViewRoleStudent, Principal{PrimaryRole: PrimaryRoleStudent}.ViewRole())
	assert.Equal(t, ViewRoleOfficer, Principal{PrimaryRole: PrimaryRoleStudent, Roles: []string{RoleOrgOfficer}}.ViewRole())
	assert.Equal(t, ViewRoleStudent, Principal{PrimaryRole: "alumni"}.ViewRole())
}

func TestApplicant_DecodeLongLegacyRecord(t *testing.T) {
	var a Applicant
	require.NoError(t, json.Unmarshal([]byte(`["Cy", "Member", "2025-01-02", "BSCS", "3rd year"]`), &a))
	assert.Equal(t, "2025-01-02", a.AppliedDate)
	assert.Equal(t, "", a.ID, "a non-UUID trailing value is not an id")
	assert.Equal(t, []string{"BSCS", "3rd year"}, a.Extra)

	a.ID = "6f1c1b2e-8d7a-4c52-9f55-3b0e4a3d2c11"
	out, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `["Cy", "Member", "2025-01-02", "BSCS", "3rd year", "6f1c1b2e-8d7a-4c52-9f55-3b0e4a3d2c11"]`, string(out))

	var again Applicant
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, a, again)
}

func TestMember_DecodeShortIDRecord(t *testing.T) {
	var m Member
	require.NoError(t, json.Unmarshal([]byte(`["Ana", "President", "Active", "2024-06-01", "m-1"]`), &m))
	assert.Equal(t, "m-1", m.ID)
	assert.Empty(t, m.Extra)
}
