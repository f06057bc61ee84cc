package dbtypes

import (
	"testing"
	"time"
)

func TestStringListRoundTrip(t *testing.T) {
	list := StringList{"anemia", "none"}
	value, err := list.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var scanned StringList
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(scanned) != 2 || scanned[0] != "anemia" || scanned[1] != "none" {
		t.Fatalf("unexpected round trip result: %#v", scanned)
	}
}

func TestStringListScanEmpty(t *testing.T) {
	var list StringList
	if err := list.Scan("{}"); err != nil {
		t.Fatalf("scan empty literal: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %#v", list)
	}
	if err := list.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
}

func TestStringListContainsOtherThan(t *testing.T) {
	if (StringList{"none"}).ContainsOtherThan("none") {
		t.Fatal("only-none list should not flag")
	}
	if (StringList{"None", ""}).ContainsOtherThan("none") {
		t.Fatal("case-insensitive none should not flag")
	}
	if !(StringList{"none", "hepatitis"}).ContainsOtherThan("none") {
		t.Fatal("non-none entry should flag")
	}
}

func TestDonorSnapshotListRoundTrip(t *testing.T) {
	when := time.Date(2025, 11, 2, 9, 30, 0, 0, time.UTC)
	list := DonorSnapshotList{{
		FullName:         "Jordan Vale",
		Email:            "jordan@example.com",
		BloodGroup:       "AB-",
		LastDonationDate: &when,
		Diseases:         StringList{"none"},
	}}

	value, err := list.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var scanned DonorSnapshotList
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(scanned) != 1 {
		t.Fatalf("expected one snapshot, got %d", len(scanned))
	}
	if scanned[0].Email != "jordan@example.com" || scanned[0].BloodGroup != "AB-" {
		t.Fatalf("unexpected snapshot: %#v", scanned[0])
	}
	if scanned[0].LastDonationDate == nil || !scanned[0].LastDonationDate.Equal(when) {
		t.Fatalf("last donation date lost: %#v", scanned[0].LastDonationDate)
	}
}

func TestDonorSnapshotListNilMeansUnattempted(t *testing.T) {
	var list DonorSnapshotList
	value, err := list.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if value != nil {
		t.Fatalf("nil list must store NULL, got %v", value)
	}

	var scanned DonorSnapshotList
	if err := scanned.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if scanned != nil {
		t.Fatalf("expected nil, got %#v", scanned)
	}
}
