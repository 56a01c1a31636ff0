package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quiz-results/internal/domain"

	"github.com/jmoiron/sqlx"
)

// sqlxMembershipRepository answers membership questions from companies and company_members.
// The company owner counts as both member and admin even without a member row.
type sqlxMembershipRepository struct {
	db *sqlx.DB
}

// NewSQLXMembershipRepository creates a membership oracle backed by the database.
func NewSQLXMembershipRepository(db *sqlx.DB) domain.MembershipOracle {
	return &sqlxMembershipRepository{db: db}
}

func (r *sqlxMembershipRepository) IsMember(ctx context.Context, userID, companyID string) (bool, error) {
	query := `SELECT COUNT(*) FROM companies c
	          WHERE c.id = :1
	            AND (c.owner_id = :2
	                 OR EXISTS (SELECT 1 FROM company_members m WHERE m.company_id = c.id AND m.user_id = :3))`
	var count int
	if err := r.db.GetContext(ctx, &count, query, companyID, userID, userID); err != nil {
		return false, fmt.Errorf("failed to check membership of user %s in company %s: %w", userID, companyID, err)
	}
	return count > 0, nil
}

func (r *sqlxMembershipRepository) IsAdminOrOwner(ctx context.Context, userID, companyID string) (bool, error) {
	query := `SELECT COUNT(*) FROM companies c
	          WHERE c.id = :1
	            AND (c.owner_id = :2
	                 OR EXISTS (SELECT 1 FROM company_members m
	                            WHERE m.company_id = c.id AND m.user_id = :3 AND m.role IN ('admin', 'owner')))`
	var count int
	if err := r.db.GetContext(ctx, &count, query, companyID, userID, userID); err != nil {
		return false, fmt.Errorf("failed to check admin role of user %s in company %s: %w", userID, companyID, err)
	}
	return count > 0, nil
}

// OwnerOf returns "" when the company does not exist.
func (r *sqlxMembershipRepository) OwnerOf(ctx context.Context, companyID string) (string, error) {
	var ownerID string
	if err := r.db.GetContext(ctx, &ownerID, `SELECT owner_id FROM companies WHERE id = :1`, companyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get owner of company %s: %w", companyID, err)
	}
	return ownerID, nil
}
