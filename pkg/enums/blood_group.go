package enums

import "fmt"

// BloodGroup is one of the eight ABO/Rh groups tracked by the bank.
type BloodGroup string

const (
	BloodGroupAPositive  BloodGroup = "A+"
	BloodGroupANegative  BloodGroup = "A-"
	BloodGroupBPositive  BloodGroup = "B+"
	BloodGroupBNegative  BloodGroup = "B-"
	BloodGroupABPositive BloodGroup = "AB+"
	BloodGroupABNegative BloodGroup = "AB-"
	BloodGroupOPositive  BloodGroup = "O+"
	BloodGroupONegative  BloodGroup = "O-"
)

var validBloodGroups = []BloodGroup{
	BloodGroupAPositive,
	BloodGroupANegative,
	BloodGroupBPositive,
	BloodGroupBNegative,
	BloodGroupABPositive,
	BloodGroupABNegative,
	BloodGroupOPositive,
	BloodGroupONegative,
}

// Query aliases used by the donor search endpoint ("aplus" etc.), since "+"
// does not survive URL query strings.
var bloodGroupAliases = map[string]BloodGroup{
	"aplus":   BloodGroupAPositive,
	"aminus":  BloodGroupANegative,
	"bplus":   BloodGroupBPositive,
	"bminus":  BloodGroupBNegative,
	"abplus":  BloodGroupABPositive,
	"abminus": BloodGroupABNegative,
	"oplus":   BloodGroupOPositive,
	"ominus":  BloodGroupONegative,
}

// BloodGroups returns all valid groups in a stable order.
func BloodGroups() []BloodGroup {
	out := make([]BloodGroup, len(validBloodGroups))
	copy(out, validBloodGroups)
	return out
}

// String implements fmt.Stringer.
func (b BloodGroup) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BloodGroup.
func (b BloodGroup) IsValid() bool {
	for _, candidate := range validBloodGroups {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBloodGroup converts raw input into a BloodGroup.
func ParseBloodGroup(value string) (BloodGroup, error) {
	for _, candidate := range validBloodGroups {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid blood group %q", value)
}

// ParseBloodGroupAlias resolves the URL-safe alias form ("aplus", "ominus").
func ParseBloodGroupAlias(value string) (BloodGroup, error) {
	if group, ok := bloodGroupAliases[value]; ok {
		return group, nil
	}
	return "", fmt.Errorf("invalid blood group alias %q", value)
}
