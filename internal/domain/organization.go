package domain

import "time"

type OrgCategory string

const (
	CategoryBank         OrgCategory = "Bank"
	CategoryMicrofinance OrgCategory = "MicrofinanceOrganization"
	CategoryOnline       OrgCategory = "Online"
	CategoryUnknown      OrgCategory = "Unknown"
)

// ParseOrgCategory maps the provider's free-form "type" string onto the
// closed category set. Unrecognized values become CategoryUnknown.
func ParseOrgCategory(raw string) OrgCategory {
	switch raw {
	case string(CategoryBank):
		return CategoryBank
	case string(CategoryMicrofinance):
		return CategoryMicrofinance
	case string(CategoryOnline):
		return CategoryOnline
	default:
		return CategoryUnknown
	}
}

func (c OrgCategory) String() string {
	return string(c)
}

// ExternalRefNBG is the well-known external reference of the official
// rate authority. It never appears in the provider's organizations list.
const ExternalRefNBG = "NBG"

type Organization struct {
	ID            string
	ExternalRefID string
	Name          string
	Website       string
	LogoURL       string
	Category      OrgCategory
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type OrganizationRepository interface {
	// UpsertByExternalID creates or updates the organization keyed by its
	// external reference id. The stored internal id is written back into org.
	UpsertByExternalID(org *Organization) (UpsertResult, error)
	FindByExternalID(externalRefID string) (*Organization, error)
	FindByName(name string) (*Organization, error)
	GetActiveOrganizations() ([]*Organization, error)
	// DeactivateWhereIDNotIn soft-deletes every active organization whose
	// internal id is not in keepIDs. Returns the number of rows deactivated.
	DeactivateWhereIDNotIn(keepIDs []string) (int64, error)
}
