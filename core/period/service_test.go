package period_test

import (
	"context"
	"testing"
	"time"

	"github.com/uniteach/monitoria/core/period"
	dummydb "github.com/uniteach/monitoria/storage/database/dummy"
)

func TestService_Create(t *testing.T) {
	db, _ := dummydb.Open()
	svc := period.NewService(dummydb.NewPeriodRepository(db))
	ctx := context.Background()

	np := period.NewPeriod{
		Year:      2026,
		Half:      period.Half1,
		StartDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	per, err := svc.Create(ctx, np)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if per.ID == 0 {
		t.Error("Create() did not assign an ID")
	}
	if per.ScholarshipCeiling.Valid {
		t.Error("Create() must leave the scholarship ceiling unset")
	}

	// same (year, half) twice
	if _, err = svc.Create(ctx, np); err != period.ErrExists {
		t.Errorf("Create() error = %v, wantErr %v", err, period.ErrExists)
	}

	// the other half is fine
	np.Half = period.Half2
	if _, err = svc.Create(ctx, np); err != nil {
		t.Errorf("Create() failed: %v", err)
	}
}

func TestService_Get(t *testing.T) {
	db, _ := dummydb.Open()
	svc := period.NewService(dummydb.NewPeriodRepository(db))
	ctx := context.Background()

	if _, err := svc.Get(ctx, 2026, period.Half1); err != period.ErrNotFound {
		t.Errorf("Get() error = %v, wantErr %v", err, period.ErrNotFound)
	}

	np := period.NewPeriod{
		Year:      2026,
		Half:      period.Half1,
		StartDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if _, err := svc.Create(ctx, np); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	per, err := svc.Get(ctx, 2026, period.Half1)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if per.Year != 2026 || per.Half != period.Half1 {
		t.Errorf("Get() = %d.%s, want 2026.H1", per.Year, per.Half)
	}
}

func TestPeriod_Open(t *testing.T) {
	per := period.Period{
		StartDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "before window", at: time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC), want: false},
		{name: "window start", at: per.StartDate, want: true},
		{name: "inside window", at: time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC), want: true},
		{name: "window end", at: per.EndDate, want: true},
		{name: "after window", at: time.Date(2026, 3, 1, 0, 0, 1, 0, time.UTC), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := per.Open(tt.at); got != tt.want {
				t.Errorf("Open() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHalf_Ordinal(t *testing.T) {
	if got := period.Half1.Ordinal(); got != 1 {
		t.Errorf("Ordinal() = %d, want 1", got)
	}
	if got := period.Half2.Ordinal(); got != 2 {
		t.Errorf("Ordinal() = %d, want 2", got)
	}
}
