package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"quiz-results/internal/domain"
	"quiz-results/internal/logger"

	"go.uber.org/zap"
)

// Summary counts the rows created by a seeding run.
type Summary struct {
	Companies int
	Members   int
	Quizzes   int
	Questions int
}

// Seeder writes fixture companies, members, quizzes and questions.
// Each company is written in its own transaction.
type Seeder struct {
	writer    domain.CatalogWriter
	txManager domain.TransactionManager
}

func NewSeeder(writer domain.CatalogWriter, txManager domain.TransactionManager) *Seeder {
	return &Seeder{writer: writer, txManager: txManager}
}

// LoadFile reads a JSON array of companies.
func LoadFile(path string) ([]Company, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	var companies []Company
	if err := json.Unmarshal(raw, &companies); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seed file %s: %w", path, err)
	}
	return companies, nil
}

// Run seeds every company. A failing company is rolled back and reported;
// the remaining companies are still seeded.
func (s *Seeder) Run(ctx context.Context, companies []Company) (Summary, error) {
	log := logger.Get()
	var total Summary
	var failed []string

	for _, sc := range companies {
		var sum Summary
		err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			var err error
			sum, err = s.seedCompany(txCtx, sc)
			return err
		})
		if err != nil {
			log.Error("Error seeding company, transaction rolled back", zap.String("company", sc.Name), zap.Error(err))
			failed = append(failed, sc.Name)
			continue
		}
		total.Companies += sum.Companies
		total.Members += sum.Members
		total.Quizzes += sum.Quizzes
		total.Questions += sum.Questions
		log.Info("Seeded company",
			zap.String("company", sc.Name),
			zap.Int("quizzes", sum.Quizzes),
			zap.Int("questions", sum.Questions),
		)
	}

	if len(failed) > 0 {
		return total, fmt.Errorf("failed to seed %d companies: %v", len(failed), failed)
	}
	return total, nil
}

func (s *Seeder) seedCompany(ctx context.Context, sc Company) (Summary, error) {
	var sum Summary

	company := &domain.Company{Name: sc.Name, OwnerID: sc.OwnerID}
	if err := s.writer.CreateCompany(ctx, company); err != nil {
		return sum, err
	}
	sum.Companies++

	members := sc.Members
	if sc.OwnerID != "" {
		members = []Member{{UserID: sc.OwnerID, Role: string(domain.MemberRoleOwner)}}
		for _, m := range sc.Members {
			if m.UserID != sc.OwnerID {
				members = append(members, m)
			}
		}
	}
	for _, m := range members {
		member := &domain.CompanyMember{CompanyID: company.ID, UserID: m.UserID, Role: domain.MemberRole(m.Role)}
		if err := s.writer.AddMember(ctx, member); err != nil {
			return sum, err
		}
		sum.Members++
	}

	for _, sq := range sc.Quizzes {
		quiz := &domain.Quiz{
			Name:        sq.Name,
			Title:       sq.Title,
			Description: sq.Description,
			RetakeAfter: time.Duration(sq.RetakeAfterMinutes) * time.Minute,
			CompanyID:   company.ID,
			CreatedBy:   sc.OwnerID,
			UpdatedBy:   sc.OwnerID,
		}
		if err := s.writer.CreateQuiz(ctx, quiz); err != nil {
			return sum, fmt.Errorf("quiz %s: %w", sq.Name, err)
		}
		sum.Quizzes++

		// Questions are graded in creation order, so keep the file order.
		for _, qq := range sq.Questions {
			question := &domain.Question{
				Text:             qq.Text,
				CandidateAnswers: qq.Answers,
				CorrectAnswers:   qq.CorrectAnswers,
				QuizID:           quiz.ID,
				CompanyID:        company.ID,
				CreatedBy:        sc.OwnerID,
				UpdatedBy:        sc.OwnerID,
			}
			if err := s.writer.CreateQuestion(ctx, question); err != nil {
				return sum, fmt.Errorf("quiz %s question %q: %w", sq.Name, qq.Text, err)
			}
			sum.Questions++
		}
	}
	return sum, nil
}
