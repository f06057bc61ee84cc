package enums

import "fmt"

// RequesterType discriminates the owner of a blood request.
type RequesterType string

const (
	RequesterTypeDonor   RequesterType = "donor"
	RequesterTypePatient RequesterType = "patient"
)

// String implements fmt.Stringer.
func (t RequesterType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known RequesterType.
func (t RequesterType) IsValid() bool {
	return t == RequesterTypeDonor || t == RequesterTypePatient
}

// ParseRequesterType converts raw input into a RequesterType.
func ParseRequesterType(value string) (RequesterType, error) {
	switch RequesterType(value) {
	case RequesterTypeDonor:
		return RequesterTypeDonor, nil
	case RequesterTypePatient:
		return RequesterTypePatient, nil
	default:
		return "", fmt.Errorf("invalid requester type %q", value)
	}
}
