package dto

// Listing kinds for GET /organizations
const (
	ListKindOrganizations = "organizations"
	ListKindBranches      = "branches"
)

// CapabilitiesResponse tells a client which management affordances to show for one organization
type CapabilitiesResponse struct {
	ViewRole            string `json:"viewRole" example:"OFFICER"`
	IsManaging          bool   `json:"isManaging"`
	CanManageMembers    bool   `json:"canManageMembers"`
	CanManageApplicants bool   `json:"canManageApplicants"`
	CanEditOrg          bool   `json:"canEditOrg"`
	CanApply            bool   `json:"canApply"`
	MembersLabel        string `json:"membersLabel" example:"Manage Members"`
}

// OrganizationSummary is one card in the organizations or branches grid
type OrganizationSummary struct {
	ID          int64  `json:"id" example:"1"`
	Name        string `json:"name" example:"Computer Society"`
	IsBranch    bool   `json:"isBranch"`
	Kind        string `json:"kind" example:"Organization"`
	LogoPath    string `json:"logoPath" example:"assets/logos/cs.png"`
	Brief       string `json:"brief"`
	Description string `json:"description"`
	ParentID    *int64 `json:"parentId,omitempty"`
}

// OrganizationListResponse is the grid listing
type OrganizationListResponse struct {
	Kind          string                `json:"kind" example:"organizations"`
	Search        string                `json:"search"`
	Organizations []OrganizationSummary `json:"organizations"`
	Total         int                   `json:"total"`
}

// OfficerResponse is an officer card
type OfficerResponse struct {
	Name          string `json:"name"`
	Position      string `json:"position"`
	PhotoPath     string `json:"photoPath"`
	CardImagePath string `json:"cardImagePath"`
	StartDate     string `json:"startDate" example:"07/08/2025"`
	CanEdit       bool   `json:"canEdit"`
}

// EventResponse is an event card
type EventResponse struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// OrganizationDetailResponse is the details page of an organization or branch
type OrganizationDetailResponse struct {
	OrganizationSummary
	Branches     []string             `json:"branches"`
	Semesters    []string             `json:"semesters"`
	Officers     []OfficerResponse    `json:"officers"`
	Events       []EventResponse      `json:"events"`
	MemberCount  int                  `json:"memberCount"`
	Capabilities CapabilitiesResponse `json:"capabilities"`
}

// OfficerListResponse is the officer grid for one semester
type OfficerListResponse struct {
	OrganizationID int64             `json:"organizationId"`
	Semester       string            `json:"semester" example:"Current Officers"`
	Semesters      []string          `json:"semesters"`
	Officers       []OfficerResponse `json:"officers"`
}

// UpdateOrganizationRequest edits the brief, objectives and logo of an organization
type UpdateOrganizationRequest struct {
	Brief       *string `json:"brief" binding:"omitempty,max=2000"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	LogoPath    *string `json:"logoPath" binding:"omitempty,image_path"`
}

// UpdateOfficerRequest edits the caller's own officer card
type UpdateOfficerRequest struct {
	Position  *string `json:"position" binding:"omitempty,min=2,max=100"`
	StartDate *string `json:"startDate" binding:"omitempty,officer_date"`
	PhotoPath *string `json:"photoPath" binding:"omitempty,image_path"`
}
