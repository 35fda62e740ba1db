package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/orghub/internal/app/models"
	"github.com/yigit/orghub/internal/pkg/apperrors"
)

func TestListMembers_FilterAndCapabilities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	list, err := f.membership.ListMembers(ctx, studentPrincipal, 1, "  DELA ")
	require.NoError(t, err)
	require.Len(t, list.Members, 2)
	assert.Equal(t, 0, list.Members[0].Row)
	assert.Equal(t, "m-1", list.Members[0].ID)
	assert.Equal(t, "m-3", list.Members[1].ID)
	assert.False(t, list.Capabilities.CanManageMembers)
	assert.Equal(t, "View Members", list.Capabilities.MembersLabel)
	assert.True(t, list.Capabilities.CanApply)

	list, err = f.membership.ListMembers(ctx, officerPrincipal, 1, "")
	require.NoError(t, err)
	assert.Len(t, list.Members, 3)
	assert.True(t, list.Capabilities.CanManageMembers)
	assert.Equal(t, "Manage Members", list.Capabilities.MembersLabel)

	_, err = f.membership.ListMembers(ctx, studentPrincipal, 404, "")
	assert.ErrorIs(t, err, apperrors.ErrOrganizationNotFound)
}

func TestListApplicants_RequiresManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.membership.ListApplicants(ctx, studentPrincipal, 1, "")
	assert.True(t, apperrors.Is(err, apperrors.ErrPermissionDenied))

	list, err := f.membership.ListApplicants(ctx, facultyPrincipal, 1, "reyes")
	require.NoError(t, err)
	require.Len(t, list.Applicants, 1)
	assert.Equal(t, "a-2", list.Applicants[0].ID)
}

func TestEditMemberRow_DuplicateNamesResolveByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Row 1 of the "dela" listing is the second Dela Cruz, not the first
	result, err := f.membership.EditMemberRow(ctx, officerPrincipal, 1, 1, "dela", "Treasurer")
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, "m-3", result.Member.ID)

	org := f.org(t, 1)
	assert.Equal(t, "Member", org.Members[0].Position)
	assert.Equal(t, "Treasurer", org.Members[2].Position)
}

func TestEditMember_InvalidPosition(t *testing.T) {
	f := newFixture(t)

	_, err := f.membership.EditMember(context.Background(), facultyPrincipal, 1, "m-1", "Emperor")
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestEditMember_ByIDAndMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.membership.EditMember(ctx, facultyPrincipal, 1, "m-2", "President")
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, "President", f.org(t, 1).Members[1].Position)

	_, err = f.membership.EditMember(ctx, facultyPrincipal, 1, "m-404", "President")
	assert.ErrorIs(t, err, apperrors.ErrMemberNotFound)
}

func TestKickMemberRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.membership.KickMemberRow(ctx, facultyPrincipal, 1, 0, "", false)
	assert.ErrorIs(t, err, apperrors.ErrConfirmationRequired)
	assert.Len(t, f.org(t, 1).Members, 3)

	_, err = f.membership.KickMemberRow(ctx, studentPrincipal, 1, 0, "", true)
	assert.True(t, apperrors.Is(err, apperrors.ErrPermissionDenied))

	result, err := f.membership.KickMemberRow(ctx, facultyPrincipal, 1, 0, "lim", true)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, "Lim, Carla", result.Member.Name)

	members := f.org(t, 1).Members
	require.Len(t, members, 2)
	assert.Equal(t, "m-1", members[0].ID)
	assert.Equal(t, "m-3", members[1].ID)
}

func TestKickMemberRow_StaleRowIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.membership.KickMemberRow(ctx, facultyPrincipal, 1, 5, "", true)
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Equal(t, ActionKick, result.Action)
	assert.Len(t, f.org(t, 1).Members, 3)

	result, err = f.membership.KickMemberRow(ctx, facultyPrincipal, 1, 0, "nobody matches", true)
	require.NoError(t, err)
	assert.False(t, result.Applied)
}

func TestAcceptApplicantRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.membership.AcceptApplicantRow(ctx, officerPrincipal, 1, 0, "santos", true)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, "a-1", result.Applicant.ID)

	org := f.org(t, 1)
	require.Len(t, org.Applicants, 1)
	assert.Equal(t, "a-2", org.Applicants[0].ID)

	require.Len(t, org.Members, 4)
	accepted := org.Members[3]
	assert.Equal(t, "Santos, Maria", accepted.Name)
	assert.Equal(t, "Member", accepted.Position)
	assert.Equal(t, models.MemberStatusActive, accepted.Status)
	assert.Equal(t, "2025-09-15", accepted.JoinedDate)
	assert.NotEmpty(t, accepted.ID)
	assert.NotEqual(t, "a-1", accepted.ID)
}

func TestAcceptApplicant_RequiresConfirm(t *testing.T) {
	f := newFixture(t)

	_, err := f.membership.AcceptApplicant(context.Background(), facultyPrincipal, 1, "a-1", false)
	assert.ErrorIs(t, err, apperrors.ErrConfirmationRequired)
	assert.Len(t, f.org(t, 1).Applicants, 2)
}

func TestDeclineApplicant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.membership.DeclineApplicant(ctx, facultyPrincipal, 1, "a-2", true)
	require.NoError(t, err)
	assert.True(t, result.Applied)

	org := f.org(t, 1)
	require.Len(t, org.Applicants, 1)
	assert.Equal(t, "a-1", org.Applicants[0].ID)
	assert.Len(t, org.Members, 3)

	_, err = f.membership.DeclineApplicant(ctx, facultyPrincipal, 1, "a-2", true)
	assert.ErrorIs(t, err, apperrors.ErrApplicantNotFound)

	result, err = f.membership.DeclineApplicantRow(ctx, facultyPrincipal, 1, 3, "", true)
	require.NoError(t, err)
	assert.False(t, result.Applied)
}

func TestOfficerOfOtherOrganizationCannotManage(t *testing.T) {
	f := newFixture(t)

	_, err := f.membership.AcceptApplicantRow(context.Background(), officerPrincipal, 2, 0, "", true)
	assert.True(t, apperrors.Is(err, apperrors.ErrPermissionDenied))
}

func TestApply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.membership.Apply(ctx, studentPrincipal, 2, "")
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, "Member", result.Applicant.Position)
	assert.Equal(t, "2025-09-15", result.Applicant.AppliedDate)

	_, err = f.membership.Apply(ctx, studentPrincipal, 2, "")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyApplied)

	_, err = f.membership.Apply(ctx, facultyPrincipal, 2, "")
	assert.True(t, apperrors.Is(err, apperrors.ErrPermissionDenied))

	_, err = f.membership.Apply(ctx, studentPrincipal, 1, "Overlord")
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	assert.Len(t, f.org(t, 2).Applicants, 1)
}
