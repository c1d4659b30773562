package model

import "time"

// Member is a participant of the sharing network together with the set of members
// it has authorized to act on its records.
type Member struct {
	ObjectType   string    `json:"objectType"`   // Set to the composite key object type (Member)
	ID           string    `json:"id"`           // Stable member identifier
	FirstName    string    `json:"firstName"`    // Display data, not used for authorization
	LastName     string    `json:"lastName"`     // Display data, not used for authorization
	Authorized   []string  `json:"authorized"`   // Member IDs granted access; a set, order carries no meaning
	RegisteredAt time.Time `json:"registeredAt"` // Timestamp of onboarding
}

// IsAuthorized reports whether memberID is present in the member's authorized set.
// A nil list is treated as empty.
func (m *Member) IsAuthorized(memberID string) bool {
	return m.authorizedIndex(memberID) >= 0
}

// Authorize adds memberID to the authorized set. It returns false when memberID
// was already present, in which case the member is left untouched.
func (m *Member) Authorize(memberID string) bool {
	if m.Authorized == nil {
		m.Authorized = []string{}
	}
	if m.authorizedIndex(memberID) >= 0 {
		return false
	}
	m.Authorized = append(m.Authorized, memberID)
	return true
}

// Revoke removes memberID from the authorized set. It returns false when memberID
// was not present.
func (m *Member) Revoke(memberID string) bool {
	idx := m.authorizedIndex(memberID)
	if idx < 0 {
		return false
	}
	m.Authorized = append(m.Authorized[:idx], m.Authorized[idx+1:]...)
	return true
}

func (m *Member) authorizedIndex(memberID string) int {
	for i, id := range m.Authorized {
		if id == memberID {
			return i
		}
	}
	return -1
}

// IdentityBinding maps a certificate identity to the member it acts as.
type IdentityBinding struct {
	ObjectType      string    `json:"objectType"`      // Set to the composite key object type (MemberIdentity)
	FullID          string    `json:"fullId"`          // Full X.509 identity string
	MemberID        string    `json:"memberId"`        // Member the identity resolves to
	OrganizationMSP string    `json:"organizationMsp"` // MSP ID of the organization
	BoundAt         time.Time `json:"boundAt"`         // Timestamp when the binding was created
}
