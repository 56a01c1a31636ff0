package service

import (
	"context"
	"fmt"
	"time"

	"quiz-results/internal/domain"
	"quiz-results/internal/logger"

	"go.uber.org/zap"
)

// Authorizer is the single place membership rules are enforced. Oracle
// failures and timeouts fail the operation.
type Authorizer struct {
	oracle  domain.MembershipOracle
	timeout time.Duration
}

// NewAuthorizer creates an Authorizer. A non-positive timeout disables the per-call deadline.
func NewAuthorizer(oracle domain.MembershipOracle, timeout time.Duration) *Authorizer {
	return &Authorizer{oracle: oracle, timeout: timeout}
}

// RequireSelf fails with NotSelf unless actor is the target user.
func (a *Authorizer) RequireSelf(actor domain.Actor, targetUserID string) error {
	if actor.UserID == "" {
		return domain.NewUnauthorizedError("authentication required")
	}
	if actor.UserID != targetUserID {
		return domain.NewNotSelfError().WithContext("userID", targetUserID)
	}
	return nil
}

func (a *Authorizer) RequireMember(ctx context.Context, actor domain.Actor, companyID string) error {
	return a.RequireRole(ctx, actor, companyID, domain.RoleMember)
}

func (a *Authorizer) RequireAdminOrOwner(ctx context.Context, actor domain.Actor, companyID string) error {
	return a.RequireRole(ctx, actor, companyID, domain.RoleAdminOrOwner)
}

// RequireRole fails with PermissionDenied when actor lacks role in companyID.
func (a *Authorizer) RequireRole(ctx context.Context, actor domain.Actor, companyID string, role domain.Role) error {
	if actor.UserID == "" {
		return domain.NewUnauthorizedError("authentication required")
	}

	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	var (
		ok  bool
		err error
	)
	switch role {
	case domain.RoleMember:
		ok, err = a.oracle.IsMember(callCtx, actor.UserID, companyID)
	default:
		ok, err = a.oracle.IsAdminOrOwner(callCtx, actor.UserID, companyID)
	}
	if err != nil {
		logger.Get().Error("Membership check failed",
			zap.String("userID", actor.UserID),
			zap.String("companyID", companyID),
			zap.String("role", string(role)),
			zap.Error(err))
		return domain.NewDependencyError("membership check failed", err).WithContext("companyID", companyID)
	}
	if !ok {
		return domain.NewPermissionDeniedError(
			fmt.Sprintf("user %s is not %s of company %s", actor.UserID, roleLabel(role), companyID)).
			WithContext("companyID", companyID)
	}
	return nil
}

func roleLabel(role domain.Role) string {
	if role == domain.RoleMember {
		return "a member"
	}
	return "an admin or owner"
}
