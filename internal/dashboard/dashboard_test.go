package dashboard

import (
	"context"
	"io"
	"testing"

	"github.com/hemolink/bloodbank-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDashboardTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schemas := []string{
		`CREATE TABLE donors (
  id TEXT PRIMARY KEY, full_name TEXT, age INTEGER, email TEXT, password_hash TEXT,
  blood_group TEXT, diseases TEXT, email_verified INTEGER DEFAULT 0,
  last_donation_date DATETIME, created_at DATETIME, updated_at DATETIME
);`,
		`CREATE TABLE patients (
  id TEXT PRIMARY KEY, full_name TEXT, age INTEGER, email TEXT, password_hash TEXT,
  blood_group TEXT, diseases TEXT, email_verified INTEGER DEFAULT 0,
  created_at DATETIME, updated_at DATETIME
);`,
		`CREATE TABLE blood_stock (
  blood_group TEXT PRIMARY KEY, unit INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME, updated_at DATETIME
);`,
		`CREATE TABLE donation_requests (
  id TEXT PRIMARY KEY, donor_id TEXT, unit INTEGER, diseases TEXT, status TEXT,
  approved_by TEXT, approval_date DATETIME, admin_comments TEXT,
  created_at DATETIME, updated_at DATETIME
);`,
		`CREATE TABLE blood_requests (
  id TEXT PRIMARY KEY, requester_id TEXT, requester_type TEXT, blood_group TEXT,
  unit INTEGER, status TEXT, approved_by TEXT, approval_date DATETIME,
  admin_comments TEXT, matched_donors_info TEXT, created_at DATETIME, updated_at DATETIME
);`,
	}
	for _, schema := range schemas {
		require.NoError(t, db.Exec(schema).Error)
	}
	return db
}

func TestSummaryAggregates(t *testing.T) {
	db := setupDashboardTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, db.Exec(
			`INSERT INTO donors (id, full_name, email, blood_group) VALUES (?, 'Donor', ?, 'O+')`,
			uuid.NewString(), uuid.NewString()+"@example.com",
		).Error)
	}
	require.NoError(t, db.Exec(
		`INSERT INTO patients (id, full_name, email, blood_group) VALUES (?, 'Pat', 'p@example.com', 'A+')`,
		uuid.NewString(),
	).Error)

	require.NoError(t, db.Exec(`INSERT INTO blood_stock (blood_group, unit) VALUES ('O+', 7), ('A-', 2)`).Error)

	for _, status := range []string{"Pending", "Pending", "Approved"} {
		require.NoError(t, db.Exec(
			`INSERT INTO donation_requests (id, donor_id, unit, status) VALUES (?, ?, 1, ?)`,
			uuid.NewString(), uuid.NewString(), status,
		).Error)
	}
	for _, status := range []string{"Approved", "Rejected"} {
		require.NoError(t, db.Exec(
			`INSERT INTO blood_requests (id, requester_id, requester_type, blood_group, unit, status)
			 VALUES (?, ?, 'patient', 'O+', 2, ?)`,
			uuid.NewString(), uuid.NewString(), status,
		).Error)
	}

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(NewRepository(db), logg)
	require.NoError(t, err)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.Donors)
	assert.Equal(t, int64(1), summary.Patients)
	assert.Equal(t, 9, summary.TotalUnits)
	require.Len(t, summary.Stock, 2)

	assert.Equal(t, int64(2), summary.DonationRequests.Pending)
	assert.Equal(t, int64(1), summary.DonationRequests.Approved)
	assert.Equal(t, int64(3), summary.DonationRequests.Total())

	assert.Equal(t, int64(1), summary.BloodRequests.Approved)
	assert.Equal(t, int64(1), summary.BloodRequests.Rejected)
	assert.Equal(t, int64(0), summary.BloodRequests.Pending)
}

func TestSummaryEmptyDatabase(t *testing.T) {
	db := setupDashboardTestDB(t)

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(NewRepository(db), logg)
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.Donors)
	assert.Equal(t, 0, summary.TotalUnits)
	assert.Equal(t, int64(0), summary.DonationRequests.Total())
}
