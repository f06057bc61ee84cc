package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DonorSnapshot is the denormalized contact record published onto a blood
// request by donor matching. Only contact-safe fields are ever copied here.
type DonorSnapshot struct {
	FullName         string     `json:"full_name"`
	Email            string     `json:"email"`
	BloodGroup       string     `json:"blood_group"`
	LastDonationDate *time.Time `json:"last_donation_date,omitempty"`
	Diseases         StringList `json:"diseases"`
}

// DonorSnapshotList maps a JSONB column holding the matched-donor snapshot.
// A nil list means no match attempt has been made yet; each publish replaces
// the stored value wholesale.
type DonorSnapshotList []DonorSnapshot

func (l *DonorSnapshotList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("DonorSnapshotList: unsupported Scan type %T", src)
	}

	if len(data) == 0 || string(data) == "null" {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, l)
}

func (l DonorSnapshotList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("DonorSnapshotList: marshal: %w", err)
	}
	return string(data), nil
}
