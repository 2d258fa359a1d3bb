package service

import (
	"context"
	"sort"
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- In-memory fakes ---

type fakeSettingRepo struct {
	settings []*model.TaxYearSetting
}

func (f *fakeSettingRepo) Create(_ context.Context, setting *model.TaxYearSetting) error {
	if setting.ID == uuid.Nil {
		setting.ID = uuid.New()
	}
	f.settings = append(f.settings, setting)
	return nil
}

func (f *fakeSettingRepo) Update(_ context.Context, setting *model.TaxYearSetting) error {
	for i, s := range f.settings {
		if s.ID == setting.ID {
			f.settings[i] = setting
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeSettingRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, s := range f.settings {
		if s.ID == id {
			f.settings = append(f.settings[:i], f.settings[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeSettingRepo) FindByID(_ context.Context, id uuid.UUID) (*model.TaxYearSetting, error) {
	for _, s := range f.settings {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSettingRepo) FindByYear(_ context.Context, trustID uuid.UUID, year int) (*model.TaxYearSetting, error) {
	for _, s := range f.settings {
		if s.TrustID == trustID && s.Year == year {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSettingRepo) FindActiveByYear(_ context.Context, trustID uuid.UUID, year int) (*model.TaxYearSetting, error) {
	for _, s := range f.settings {
		if s.TrustID == trustID && s.Year == year && s.IsActive {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSettingRepo) List(_ context.Context, trustID uuid.UUID, _, _ int) ([]model.TaxYearSetting, int64, error) {
	var out []model.TaxYearSetting
	for _, s := range f.settings {
		if s.TrustID == trustID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out, int64(len(out)), nil
}

func (f *fakeSettingRepo) ListActiveAscending(_ context.Context, trustID uuid.UUID) ([]model.TaxYearSetting, error) {
	var out []model.TaxYearSetting
	for _, s := range f.settings {
		if s.TrustID == trustID && s.IsActive {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

func (f *fakeSettingRepo) BulkSetIncludePreviousYears(_ context.Context, trustID uuid.UUID, flag bool) (int64, error) {
	var rows int64
	for _, s := range f.settings {
		if s.TrustID == trustID {
			s.IncludePreviousYears = flag
			rows++
		}
	}
	return rows, nil
}

type fakeRecordRepo struct {
	records []*model.MemberTaxRecord
}

func (f *fakeRecordRepo) Create(_ context.Context, record *model.MemberTaxRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeRecordRepo) Update(_ context.Context, record *model.MemberTaxRecord) error {
	for i, r := range f.records {
		if r.ID == record.ID {
			f.records[i] = record
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRecordRepo) FindByMemberYear(_ context.Context, trustID, memberID uuid.UUID, year int) (*model.MemberTaxRecord, error) {
	for _, r := range f.records {
		if r.TrustID == trustID && r.MemberID == memberID && r.Year == year {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRecordRepo) ListByMember(_ context.Context, trustID, memberID uuid.UUID) ([]model.MemberTaxRecord, error) {
	var out []model.MemberTaxRecord
	for _, r := range f.records {
		if r.TrustID == trustID && r.MemberID == memberID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

func (f *fakeRecordRepo) MapByMember(ctx context.Context, trustID, memberID uuid.UUID) (map[int]model.MemberTaxRecord, error) {
	records, err := f.ListByMember(ctx, trustID, memberID)
	if err != nil {
		return nil, err
	}
	byYear := make(map[int]model.MemberTaxRecord, len(records))
	for _, rec := range records {
		byYear[rec.Year] = rec
	}
	return byYear, nil
}

type fakeMemberRepo struct {
	members []*model.Member
}

func (f *fakeMemberRepo) Create(_ context.Context, member *model.Member) error {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	f.members = append(f.members, member)
	return nil
}

func (f *fakeMemberRepo) Update(_ context.Context, member *model.Member) error {
	for i, m := range f.members {
		if m.ID == member.ID {
			f.members[i] = member
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeMemberRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, m := range f.members {
		if m.ID == id {
			f.members = append(f.members[:i], f.members[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeMemberRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Member, error) {
	for _, m := range f.members {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMemberRepo) FindByCode(_ context.Context, trustID uuid.UUID, memberCode string) (*model.Member, error) {
	for _, m := range f.members {
		if m.TrustID == trustID && m.MemberCode == memberCode {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMemberRepo) List(_ context.Context, trustID uuid.UUID, _, _ string, _, _ int) ([]model.Member, int64, error) {
	var out []model.Member
	for _, m := range f.members {
		if m.TrustID == trustID {
			out = append(out, *m)
		}
	}
	return out, int64(len(out)), nil
}

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func (f *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) List(_ context.Context, trustID uuid.UUID, action string, _, _ int) ([]model.AuditLog, int64, error) {
	var out []model.AuditLog
	for _, e := range f.entries {
		if e.TrustID != trustID {
			continue
		}
		if action == "" || e.Action == action {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

// --- Fixture ---

type taxServiceFixture struct {
	svc         TaxService
	settingRepo *fakeSettingRepo
	recordRepo  *fakeRecordRepo
	memberRepo  *fakeMemberRepo
	auditRepo   *fakeAuditRepo
	trustID     uuid.UUID
}

func newTaxServiceFixture() *taxServiceFixture {
	f := &taxServiceFixture{
		settingRepo: &fakeSettingRepo{},
		recordRepo:  &fakeRecordRepo{},
		memberRepo:  &fakeMemberRepo{},
		auditRepo:   &fakeAuditRepo{},
		trustID:     uuid.New(),
	}
	f.svc = NewTaxService(f.settingRepo, f.recordRepo, f.memberRepo, f.auditRepo, nil)
	return f
}

func (f *taxServiceFixture) seedSetting(t *testing.T, year int, amount string, active, includePrev bool) *model.TaxYearSetting {
	t.Helper()
	setting := &model.TaxYearSetting{
		TrustID:              f.trustID,
		Year:                 year,
		TaxAmount:            dec(t, amount),
		IsActive:             active,
		IncludePreviousYears: includePrev,
	}
	require.NoError(t, f.settingRepo.Create(context.Background(), setting))
	return setting
}

func (f *taxServiceFixture) seedMember(t *testing.T, code string) *model.Member {
	t.Helper()
	member := &model.Member{
		TrustID:    f.trustID,
		MemberCode: code,
		FullName:   "Test Member",
		Status:     model.MemberStatusActive,
	}
	require.NoError(t, f.memberRepo.Create(context.Background(), member))
	return member
}

// --- Tests ---

func TestParseReferenceYear(t *testing.T) {
	cases := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "2023", want: 2023},
		{raw: " 2023 ", want: 2023},
		{raw: "1000", want: 1000},
		{raw: "9999", want: 9999},
		{raw: "999", wantErr: true},
		{raw: "10000", wantErr: true},
		{raw: "20x4", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "-2023", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := parseReferenceYear(tc.raw)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidReferenceYear)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestComputeCumulativeLiabilityInvalidYear(t *testing.T) {
	f := newTaxServiceFixture()
	f.seedMember(t, "M-001")

	_, err := f.svc.ComputeCumulativeLiability(context.Background(), f.trustID, "M-001", "not-a-year")
	assert.ErrorIs(t, err, ErrInvalidReferenceYear)
}

func TestComputeCumulativeLiabilityMemberNotFound(t *testing.T) {
	f := newTaxServiceFixture()

	_, err := f.svc.ComputeCumulativeLiability(context.Background(), f.trustID, "NOPE", "2023")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestComputeCumulativeLiabilityEndToEnd(t *testing.T) {
	f := newTaxServiceFixture()
	f.seedSetting(t, 2022, "500", true, true)
	f.seedSetting(t, 2023, "600", true, true)
	// Inactive rows never reach the calculator.
	f.seedSetting(t, 2021, "999", false, true)
	member := f.seedMember(t, "M-001")

	report, err := f.svc.ComputeCumulativeLiability(context.Background(), f.trustID, "M-001", "2023")
	require.NoError(t, err)

	assertDecimal(t, "500", report.CumulativeOutstanding)
	assertDecimal(t, "600", report.CurrentYearTax)
	assertDecimal(t, "1100", report.TotalTaxDue)
	assert.True(t, report.IsNewUser)
	assert.Equal(t, 2022, report.JoiningYear)

	// A recorded current-year registration flips the outcome.
	require.NoError(t, f.recordRepo.Create(context.Background(), &model.MemberTaxRecord{
		TrustID:    f.trustID,
		MemberID:   member.ID,
		Year:       2023,
		TaxAmount:  dec(t, "600"),
		AmountPaid: dec(t, "600"),
	}))

	report, err = f.svc.ComputeCumulativeLiability(context.Background(), f.trustID, "M-001", "2023")
	require.NoError(t, err)

	assertDecimal(t, "0", report.CumulativeOutstanding)
	assertDecimal(t, "600", report.TotalTaxDue)
	assert.False(t, report.IsNewUser)
	assert.Equal(t, 2023, report.JoiningYear)
}

func TestSaveTaxSettingUpsertsByYear(t *testing.T) {
	f := newTaxServiceFixture()
	ctx := context.Background()

	created, err := f.svc.SaveTaxSetting(ctx, f.trustID, SaveTaxSettingRequest{
		Year:                 2023,
		TaxAmount:            "600",
		IncludePreviousYears: true,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, 2023, created.Year)
	assert.True(t, created.IsActive) // defaults to active when omitted

	// Saving the same year again updates in place instead of duplicating.
	inactive := false
	updated, err := f.svc.SaveTaxSetting(ctx, f.trustID, SaveTaxSettingRequest{
		Year:      2023,
		TaxAmount: "750",
		IsActive:  &inactive,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "750.00", updated.TaxAmount)
	assert.False(t, updated.IsActive)
	assert.Len(t, f.settingRepo.settings, 1)

	// Both operations left an audit trail, stamped with the trust.
	assert.Len(t, f.auditRepo.entries, 2)
	assert.Equal(t, model.ActionCreateTaxSetting, f.auditRepo.entries[0].Action)
	assert.Equal(t, model.ActionUpdateTaxSetting, f.auditRepo.entries[1].Action)
	for _, e := range f.auditRepo.entries {
		assert.Equal(t, f.trustID, e.TrustID)
	}
}

func TestSaveTaxSettingRejectsBadAmounts(t *testing.T) {
	f := newTaxServiceFixture()
	ctx := context.Background()

	_, err := f.svc.SaveTaxSetting(ctx, f.trustID, SaveTaxSettingRequest{Year: 2023, TaxAmount: "abc"}, "")
	assert.Error(t, err)

	_, err = f.svc.SaveTaxSetting(ctx, f.trustID, SaveTaxSettingRequest{Year: 2023, TaxAmount: "-10"}, "")
	assert.Error(t, err)

	assert.Empty(t, f.settingRepo.settings)
}

func TestBulkSetIncludePreviousYears(t *testing.T) {
	f := newTaxServiceFixture()
	f.seedSetting(t, 2021, "400", true, false)
	f.seedSetting(t, 2022, "500", true, true)
	f.seedSetting(t, 2023, "600", false, false)

	res, err := f.svc.BulkSetIncludePreviousYears(context.Background(), f.trustID, true, "")
	require.NoError(t, err)

	// All rows of the trust get the flag, active or not.
	assert.Equal(t, int64(3), res.UpdatedRows)
	assert.True(t, res.IncludePreviousYears)
	for _, s := range f.settingRepo.settings {
		assert.True(t, s.IncludePreviousYears)
	}
}

func TestDeleteTaxSettingScopedToTrust(t *testing.T) {
	f := newTaxServiceFixture()
	setting := f.seedSetting(t, 2023, "600", true, false)

	otherTrust := uuid.New()
	err := f.svc.DeleteTaxSetting(context.Background(), otherTrust, setting.ID.String(), "")
	assert.Error(t, err)
	assert.Len(t, f.settingRepo.settings, 1)

	err = f.svc.DeleteTaxSetting(context.Background(), f.trustID, setting.ID.String(), "")
	require.NoError(t, err)
	assert.Empty(t, f.settingRepo.settings)
}

func TestGetActiveSettingNilWhenMissing(t *testing.T) {
	f := newTaxServiceFixture()
	f.seedSetting(t, 2023, "600", false, false)

	setting, err := f.svc.GetActiveSetting(context.Background(), f.trustID, 2023)
	require.NoError(t, err)
	assert.Nil(t, setting)
}
