package services

// Organization edit actions, published alongside the table actions
const (
	ActionUpdateDetails = "update_details"
	ActionUploadLogo    = "upload_logo"
	ActionEditOfficer   = "edit_officer"
)

// ChangeNotifier is told about every change written to an organization or branch
type ChangeNotifier interface {
	OrganizationChanged(organizationID int64, action string, actor string)
}

type noopNotifier struct{}

func (noopNotifier) OrganizationChanged(int64, string, string) {}
