package service

import (
	"context"
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type memberServiceFixture struct {
	svc         MemberService
	memberRepo  *fakeMemberRepo
	recordRepo  *fakeRecordRepo
	settingRepo *fakeSettingRepo
	auditRepo   *fakeAuditRepo
	trustID     uuid.UUID
}

func newMemberServiceFixture() *memberServiceFixture {
	f := &memberServiceFixture{
		memberRepo:  &fakeMemberRepo{},
		recordRepo:  &fakeRecordRepo{},
		settingRepo: &fakeSettingRepo{},
		auditRepo:   &fakeAuditRepo{},
		trustID:     uuid.New(),
	}
	f.svc = NewMemberService(f.memberRepo, f.recordRepo, f.settingRepo, f.auditRepo, fakeTxManager{})
	return f
}

func TestCreateMemberRejectsDuplicateCode(t *testing.T) {
	f := newMemberServiceFixture()
	ctx := context.Background()

	_, err := f.svc.CreateMember(ctx, f.trustID, CreateMemberRequest{MemberCode: "M-001", FullName: "First"}, "")
	require.NoError(t, err)

	_, err = f.svc.CreateMember(ctx, f.trustID, CreateMemberRequest{MemberCode: "M-001", FullName: "Second"}, "")
	assert.Error(t, err)
	assert.Len(t, f.memberRepo.members, 1)
}

func TestRecordTaxPaymentCreatesThenAccumulates(t *testing.T) {
	f := newMemberServiceFixture()
	ctx := context.Background()

	setting := &model.TaxYearSetting{
		TrustID:   f.trustID,
		Year:      2023,
		TaxAmount: dec(t, "600"),
		IsActive:  true,
	}
	require.NoError(t, f.settingRepo.Create(ctx, setting))

	_, err := f.svc.CreateMember(ctx, f.trustID, CreateMemberRequest{MemberCode: "M-001", FullName: "Payer"}, "")
	require.NoError(t, err)

	// First payment creates the record and snapshots the assessed amount.
	rec, err := f.svc.RecordTaxPayment(ctx, f.trustID, "M-001", RecordTaxPaymentRequest{
		Year:      2023,
		Amount:    "250",
		ReceiptNo: "R-1",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "600.00", rec.TaxAmount)
	assert.Equal(t, "250.00", rec.AmountPaid)
	assert.Equal(t, "350.00", rec.Outstanding)
	assert.Len(t, f.recordRepo.records, 1)

	// Second payment mutates the same row.
	rec, err = f.svc.RecordTaxPayment(ctx, f.trustID, "M-001", RecordTaxPaymentRequest{
		Year:   2023,
		Amount: "350",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "600.00", rec.AmountPaid)
	assert.Equal(t, "0.00", rec.Outstanding)
	assert.Len(t, f.recordRepo.records, 1)
}

func TestRecordTaxPaymentRequiresActiveSetting(t *testing.T) {
	f := newMemberServiceFixture()
	ctx := context.Background()

	_, err := f.svc.CreateMember(ctx, f.trustID, CreateMemberRequest{MemberCode: "M-001", FullName: "Payer"}, "")
	require.NoError(t, err)

	_, err = f.svc.RecordTaxPayment(ctx, f.trustID, "M-001", RecordTaxPaymentRequest{
		Year:   2023,
		Amount: "250",
	}, "")
	assert.ErrorContains(t, err, "no active tax setting")
	assert.Empty(t, f.recordRepo.records)
}

func TestRecordTaxPaymentUnknownMember(t *testing.T) {
	f := newMemberServiceFixture()

	_, err := f.svc.RecordTaxPayment(context.Background(), f.trustID, "NOPE", RecordTaxPaymentRequest{
		Year:   2023,
		Amount: "100",
	}, "")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestMemberLookupScopedToTrust(t *testing.T) {
	f := newMemberServiceFixture()
	ctx := context.Background()

	created, err := f.svc.CreateMember(ctx, f.trustID, CreateMemberRequest{MemberCode: "M-001", FullName: "Scoped"}, "")
	require.NoError(t, err)

	otherTrust := uuid.New()
	_, err = f.svc.GetMemberByCode(ctx, otherTrust, "M-001")
	assert.ErrorIs(t, err, ErrMemberNotFound)

	_, err = f.svc.UpdateMember(ctx, otherTrust, created.ID, UpdateMemberRequest{FullName: "Hijack"}, "")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}
