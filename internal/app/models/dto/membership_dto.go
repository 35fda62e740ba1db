package dto

// MemberResponse is one row of the members table
type MemberResponse struct {
	Row        int    `json:"row"`
	ID         string `json:"id"`
	Name       string `json:"name"`
	Position   string `json:"position"`
	Status     string `json:"status"`
	JoinedDate string `json:"joinedDate" example:"2025-09-01"`
}

// ApplicantResponse is one row of the applicants table
type ApplicantResponse struct {
	Row         int    `json:"row"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Position    string `json:"position"`
	AppliedDate string `json:"appliedDate"`
}

// MemberListResponse is the members table of an organization
type MemberListResponse struct {
	OrganizationID int64                `json:"organizationId"`
	Kind           string               `json:"kind" example:"Organization"`
	Title          string               `json:"title" example:"Member List"`
	Search         string               `json:"search"`
	Members        []MemberResponse     `json:"members"`
	Capabilities   CapabilitiesResponse `json:"capabilities"`
}

// ApplicantListResponse is the applicants table of an organization
type ApplicantListResponse struct {
	OrganizationID int64               `json:"organizationId"`
	Title          string              `json:"title" example:"Applicant List"`
	Search         string              `json:"search"`
	Applicants     []ApplicantResponse `json:"applicants"`
}

// RowActionRequest addresses a row of a table filtered by Search
type RowActionRequest struct {
	Search  string `json:"search"`
	Confirm bool   `json:"confirm"`
}

// EditMemberRowRequest changes the position of the member shown at a row
type EditMemberRowRequest struct {
	Search   string `json:"search"`
	Position string `json:"position" binding:"required,member_position"`
}

// EditMemberRequest changes the position of a member addressed by id
type EditMemberRequest struct {
	Position string `json:"position" binding:"required,member_position"`
}

// ConfirmRequest carries the explicit confirmation destructive actions require
type ConfirmRequest struct {
	Confirm bool `json:"confirm"`
}

// ApplyRequest is a student's application to an organization
type ApplyRequest struct {
	Position string `json:"position" binding:"omitempty,member_position"`
}

// ActionResult reports whether a table action changed anything. Applied is false
// when the addressed row no longer exists in the current listing.
type ActionResult struct {
	Applied   bool               `json:"applied"`
	Action    string             `json:"action" example:"accept"`
	Member    *MemberResponse    `json:"member,omitempty"`
	Applicant *ApplicantResponse `json:"applicant,omitempty"`
}
