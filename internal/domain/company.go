package domain

import (
	"context"
	"strings"
)

// Company owns quizzes and members.
type Company struct {
	ID      string
	Name    string
	OwnerID string
}

// MemberRole is stored on company_members.role.
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

// CompanyMember links a user to a company.
type CompanyMember struct {
	CompanyID string
	UserID    string
	Role      MemberRole
}

// Validate validates the membership row
func (m *CompanyMember) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(m.CompanyID) == "" {
		errs = append(errs, NewMissingFieldError("company_id"))
	}
	if strings.TrimSpace(m.UserID) == "" {
		errs = append(errs, NewMissingFieldError("user_id"))
	}
	switch m.Role {
	case MemberRoleOwner, MemberRoleAdmin, MemberRoleMember:
	default:
		errs = append(errs, NewInvalidFormatError("role", string(m.Role)))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CatalogWriter creates catalog rows. The scoring engine never writes the
// catalog; this is used by the seeding command.
type CatalogWriter interface {
	CreateCompany(ctx context.Context, company *Company) error
	AddMember(ctx context.Context, member *CompanyMember) error
	CreateQuiz(ctx context.Context, quiz *Quiz) error
	CreateQuestion(ctx context.Context, question *Question) error
}
