package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"fintrack-service/internal/domain"
	"fintrack-service/internal/repository/repotest"
	"fintrack-service/pkg/xerrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin       = domain.Principal{ID: 1, Role: domain.RoleAdmin}
	secondAdmin = domain.Principal{ID: 2, Role: domain.RoleAdmin}
	member      = domain.Principal{ID: 5, Role: domain.RoleMember}
	otherMember = domain.Principal{ID: 6, Role: domain.RoleMember}
)

type workflowFixture struct {
	trxRepo *repotest.TransactionRepo
	drRepo  *repotest.DeletionRequestRepo
	svc     *DeletionRequestService
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()
	trxRepo := repotest.NewTransactionRepo()
	drRepo := repotest.NewDeletionRequestRepo(trxRepo)
	return &workflowFixture{
		trxRepo: trxRepo,
		drRepo:  drRepo,
		svc:     NewDeletionRequestService(drRepo, trxRepo),
	}
}

func (f *workflowFixture) seedTransaction(t *testing.T, owner domain.Principal) *domain.Transaction {
	t.Helper()
	trx := &domain.Transaction{
		TrxType:   domain.TransactionTypeExpense,
		Amount:    49.90,
		CreatedBy: owner.ID,
	}
	require.NoError(t, f.trxRepo.Create(context.Background(), trx))
	return trx
}

func submitReq(transactionID int64, reason string) *SubmitDeletionRequest {
	return &SubmitDeletionRequest{TransactionID: transactionID, Reason: reason}
}

func TestSubmitMissingTransaction(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.svc.Submit(context.Background(), member, submitReq(999, "never existed, remove it"))
	assert.ErrorIs(t, err, xerrors.ErrTransactionNotFound)
}

func TestSubmitOwnershipGate(t *testing.T) {
	f := newWorkflowFixture(t)
	trx := f.seedTransaction(t, member)

	_, err := f.svc.Submit(context.Background(), otherMember, submitReq(trx.ID, "not mine, but still trying"))
	assert.ErrorIs(t, err, xerrors.ErrNotTransactionOwner)

	// Admins may submit for any transaction.
	dr, err := f.svc.Submit(context.Background(), admin, submitReq(trx.ID, "cleanup of stale record"))
	require.NoError(t, err)
	assert.Equal(t, domain.DeletionRequestPending, dr.Status)
	assert.Equal(t, admin.ID, dr.RequestedBy)
}

func TestSubmitDuplicatePending(t *testing.T) {
	f := newWorkflowFixture(t)
	trx := f.seedTransaction(t, member)

	first, err := f.svc.Submit(context.Background(), member, submitReq(trx.ID, "duplicate entry"))
	require.NoError(t, err)
	assert.Equal(t, domain.DeletionRequestPending, first.Status)

	_, err = f.svc.Submit(context.Background(), member, submitReq(trx.ID, "again, please"))
	assert.ErrorIs(t, err, xerrors.ErrDuplicateDeletionRequest)

	count, err := f.svc.PendingCount(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestReviewRejectKeepsTransaction(t *testing.T) {
	f := newWorkflowFixture(t)
	trx := f.seedTransaction(t, member)

	dr, err := f.svc.Submit(context.Background(), member, submitReq(trx.ID, "duplicate entry"))
	require.NoError(t, err)

	note := "insufficient evidence"
	reviewed, err := f.svc.Review(context.Background(), admin, &ReviewDeletionRequest{
		RequestID: dr.ID,
		Decision:  domain.DecisionReject,
		AdminNote: &note,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.DeletionRequestRejected, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, admin.ID, *reviewed.ReviewedBy)
	assert.NotNil(t, reviewed.ReviewedAt)
	require.NotNil(t, reviewed.AdminNote)
	assert.Equal(t, note, *reviewed.AdminNote)

	// The target survives a rejection.
	_, err = f.trxRepo.GetByID(context.Background(), trx.ID)
	assert.NoError(t, err)
}

func TestResubmitAfterTerminalThenApprove(t *testing.T) {
	f := newWorkflowFixture(t)
	trx := f.seedTransaction(t, member)

	first, err := f.svc.Submit(context.Background(), member, submitReq(trx.ID, "duplicate entry"))
	require.NoError(t, err)
	_, err = f.svc.Review(context.Background(), admin, &ReviewDeletionRequest{
		RequestID: first.ID,
		Decision:  domain.DecisionReject,
	})
	require.NoError(t, err)

	// The first request is terminal, so a fresh one is allowed.
	second, err := f.svc.Submit(context.Background(), member, submitReq(trx.ID, "still a duplicate entry"))
	require.NoError(t, err)

	approved, err := f.svc.Review(context.Background(), admin, &ReviewDeletionRequest{
		RequestID: second.ID,
		Decision:  domain.DecisionApprove,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DeletionRequestApproved, approved.Status)

	// Target is gone, the request record is retained.
	_, err = f.trxRepo.GetByID(context.Background(), trx.ID)
	assert.ErrorIs(t, err, xerrors.ErrTransactionNotFound)

	kept, err := f.svc.Get(context.Background(), member, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeletionRequestApproved, kept.Status)
}

func TestReviewTerminalIsImmutable(t *testing.T) {
	f := newWorkflowFixture(t)
	trx := f.seedTransaction(t, member)

	dr, err := f.svc.Submit(context.Background(), member, submitReq(trx.ID, "duplicate entry"))
	require.NoError(t, err)

	rejected, err := f.svc.Review(context.Background(), admin, &ReviewDeletionRequest{
		RequestID: dr.ID,
		Decision:  domain.DecisionReject,
	})
	require.NoError(t, err)

	_, err = f.svc.Review(context.Background(), secondAdmin, &ReviewDeletionRequest{
		RequestID: dr.ID,
		Decision:  domain.DecisionApprove,
	})
	assert.ErrorIs(t, err, xerrors.ErrAlreadyReviewed)

	// Reviewer fields never mutate after the first transition.
	after, err := f.svc.Get(context.Background(), admin, dr.ID)
	require.NoError(t, err)
	assert.Equal(t, rejected.Status, after.Status)
	assert.Equal(t, *rejected.ReviewedBy, *after.ReviewedBy)
	assert.Equal(t, rejected.ReviewedAt.Unix(), after.ReviewedAt.Unix())

	// And the target was never touched.
	_, err = f.trxRepo.GetByID(context.Background(), trx.ID)
	assert.NoError(t, err)
}

func TestReviewInvalidDecision(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.svc.Review(context.Background(), admin, &ReviewDeletionRequest{
		RequestID: 1,
		Decision:  domain.ReviewDecision("maybe"),
	})
	assert.ErrorIs(t, err, xerrors.ErrInvalidDecision)
}

func TestReviewRequiresAdmin(t *testing.T) {
	f := newWorkflowFixture(t)
	trx := f.seedTransaction(t, member)

	dr, err := f.svc.Submit(context.Background(), member, submitReq(trx.ID, "duplicate entry"))
	require.NoError(t, err)

	_, err = f.svc.Review(context.Background(), member, &ReviewDeletionRequest{
		RequestID: dr.ID,
		Decision:  domain.DecisionApprove,
	})
	assert.ErrorIs(t, err, xerrors.ErrForbidden)
}

func TestReviewOwnRequestDenied(t *testing.T) {
	f := newWorkflowFixture(t)
	trx := f.seedTransaction(t, admin)

	dr, err := f.svc.Submit(context.Background(), admin, submitReq(trx.ID, "my own stale record"))
	require.NoError(t, err)

	_, err = f.svc.Review(context.Background(), admin, &ReviewDeletionRequest{
		RequestID: dr.ID,
		Decision:  domain.DecisionApprove,
	})
	assert.ErrorIs(t, err, xerrors.ErrSelfReviewNotAllowed)

	// Another admin can settle it.
	approved, err := f.svc.Review(context.Background(), secondAdmin, &ReviewDeletionRequest{
		RequestID: dr.ID,
		Decision:  domain.DecisionApprove,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DeletionRequestApproved, approved.Status)
}

func TestApproveRollsBackWhenDeleteFails(t *testing.T) {
	f := newWorkflowFixture(t)
	trx := f.seedTransaction(t, member)

	dr, err := f.svc.Submit(context.Background(), member, submitReq(trx.ID, "duplicate entry"))
	require.NoError(t, err)

	f.trxRepo.DeleteErr = errors.New("storage unavailable")
	_, err = f.svc.Review(context.Background(), admin, &ReviewDeletionRequest{
		RequestID: dr.ID,
		Decision:  domain.DecisionApprove,
	})
	assert.ErrorIs(t, err, xerrors.ErrDeletionFailed)

	// Rolled back: still pending, target still present.
	after, err := f.svc.Get(context.Background(), admin, dr.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeletionRequestPending, after.Status)
	assert.Nil(t, after.ReviewedBy)
	_, err = f.trxRepo.GetByID(context.Background(), trx.ID)
	assert.NoError(t, err)

	// A retry after the transient failure succeeds.
	f.trxRepo.DeleteErr = nil
	approved, err := f.svc.Review(context.Background(), admin, &ReviewDeletionRequest{
		RequestID: dr.ID,
		Decision:  domain.DecisionApprove,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DeletionRequestApproved, approved.Status)
}

func TestConcurrentApprovalsExactlyOneWins(t *testing.T) {
	f := newWorkflowFixture(t)
	trx := f.seedTransaction(t, member)

	dr, err := f.svc.Submit(context.Background(), member, submitReq(trx.ID, "duplicate entry"))
	require.NoError(t, err)

	const reviewers = 8
	var wg sync.WaitGroup
	results := make(chan error, reviewers)

	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		reviewer := domain.Principal{ID: int64(100 + i), Role: domain.RoleAdmin}
		go func() {
			defer wg.Done()
			_, err := f.svc.Review(context.Background(), reviewer, &ReviewDeletionRequest{
				RequestID: dr.ID,
				Decision:  domain.DecisionApprove,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, xerrors.ErrAlreadyReviewed):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, reviewers-1, conflicts)
	assert.Equal(t, 1, f.trxRepo.DeleteCount)
}

func TestListScopedToOwnerForMembers(t *testing.T) {
	f := newWorkflowFixture(t)
	trxA := f.seedTransaction(t, member)
	trxB := f.seedTransaction(t, otherMember)

	_, err := f.svc.Submit(context.Background(), member, submitReq(trxA.ID, "duplicate entry"))
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), otherMember, submitReq(trxB.ID, "wrong amount recorded"))
	require.NoError(t, err)

	mine, err := f.svc.List(context.Background(), member, nil)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, member.ID, mine[0].RequestedBy)

	all, err := f.svc.List(context.Background(), admin, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetDeniedForOtherMembersRequest(t *testing.T) {
	f := newWorkflowFixture(t)
	trx := f.seedTransaction(t, member)

	dr, err := f.svc.Submit(context.Background(), member, submitReq(trx.ID, "duplicate entry"))
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), otherMember, dr.ID)
	assert.ErrorIs(t, err, xerrors.ErrForbidden)

	_, err = f.svc.Get(context.Background(), admin, dr.ID)
	assert.NoError(t, err)
}

func TestPendingCountRequiresAdmin(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.svc.PendingCount(context.Background(), member)
	assert.ErrorIs(t, err, xerrors.ErrForbidden)
}
