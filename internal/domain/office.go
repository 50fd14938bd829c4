package domain

import "time"

// Sentinel values used for virtual offices synthesized for online-only
// organizations so their rates have a home in the data model.
const (
	VirtualOfficeName    = "Online"
	VirtualOfficeAddress = "N/A"
	VirtualOfficePrefix  = "virtual-"
)

type Office struct {
	ID             string
	ExternalRefID  string
	OrganizationID string
	Name           string
	Address        string
	Lat            float64
	Lng            float64
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// VirtualOfficeRefID derives the external reference of the synthesized
// office for an online organization from the organization's own reference.
func VirtualOfficeRefID(orgExternalRefID string) string {
	return VirtualOfficePrefix + orgExternalRefID
}

type OfficeRepository interface {
	UpsertByExternalID(office *Office) (UpsertResult, error)
	FindByExternalID(externalRefID string) (*Office, error)
	// GetByOrganization returns the organization's offices ordered by
	// creation time, so "the first office" is stable across calls.
	GetByOrganization(organizationID string) ([]*Office, error)
	GetActiveByOrganization(organizationID string) ([]*Office, error)
	UpdateCoordinates(officeID string, lat, lng float64) error
	DeactivateWhereIDNotIn(keepIDs []string) (int64, error)
}
