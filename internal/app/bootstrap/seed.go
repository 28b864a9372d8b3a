package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	postgresadapter "qaboard/contexts/community-experience/answer-service/adapters/postgres"
	"qaboard/contexts/community-experience/answer-service/application/commands"
	"qaboard/contexts/community-experience/answer-service/domain/entities"
	"qaboard/internal/platform/config"
	"qaboard/internal/platform/db"
)

type SeedOptions struct {
	QuestionID int64
	Subject    string
	Count      int
	Content    string
}

// Seed creates Count author-less answers under one question, creating the
// question row first when it is missing.
func Seed(ctx context.Context, cfg config.Config, opts SeedOptions) (int, error) {
	logger := slog.Default().With("service", cfg.ServiceName, "process", "seed")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return 0, errors.New("POSTGRES_DSN is required")
	}
	if err := opts.validate(); err != nil {
		return 0, err
	}

	pg, err := db.Connect(ctx, cfg.PostgresDSN, db.DefaultOptions())
	if err != nil {
		return 0, err
	}
	defer func() { _ = pg.Close() }()

	repo := postgresadapter.NewRepository(pg.DB, logger)
	if err := repo.Migrate(ctx); err != nil {
		return 0, err
	}
	question := entities.Question{QuestionID: opts.QuestionID, Subject: opts.Subject}
	if err := repo.EnsureQuestion(ctx, question); err != nil {
		return 0, err
	}

	uc := commands.AnswerUseCase{
		Answers: repo,
		Clock:   postgresadapter.SystemClock{},
		Logger:  logger,
	}
	return seedAnswers(ctx, uc, question, opts.Count, opts.Content)
}

func (o SeedOptions) validate() error {
	if o.QuestionID <= 0 {
		return fmt.Errorf("question id must be positive, got %d", o.QuestionID)
	}
	if o.Count <= 0 {
		return fmt.Errorf("count must be positive, got %d", o.Count)
	}
	if strings.TrimSpace(o.Content) == "" {
		return errors.New("content is required")
	}
	return nil
}

func seedAnswers(
	ctx context.Context,
	uc commands.AnswerUseCase,
	question entities.Question,
	count int,
	content string,
) (int, error) {
	for i := 0; i < count; i++ {
		if _, err := uc.Create(ctx, question, content, nil); err != nil {
			return i, fmt.Errorf("seed answer %d of %d: %w", i+1, count, err)
		}
	}
	return count, nil
}
