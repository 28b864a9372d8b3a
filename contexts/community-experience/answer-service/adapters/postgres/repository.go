package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"qaboard/contexts/community-experience/answer-service/domain/entities"
	domainerrors "qaboard/contexts/community-experience/answer-service/domain/errors"
	"qaboard/contexts/community-experience/answer-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreateAnswer(ctx context.Context, answer entities.Answer) (entities.Answer, error) {
	row := answerModelFromEntity(answer)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isForeignKeyViolation(err) {
			return entities.Answer{}, domainerrors.ErrQuestionNotFound
		}
		return entities.Answer{}, r.logError("answer_repo_create_failed", err,
			"question_id", answer.QuestionID,
		)
	}
	return row.toEntity(nil), nil
}

func (r *Repository) GetAnswer(ctx context.Context, answerID int64) (entities.Answer, error) {
	var row answerModel
	err := r.db.WithContext(ctx).
		Where("id = ?", answerID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Answer{}, domainerrors.ErrAnswerNotFound
		}
		return entities.Answer{}, r.logError("answer_repo_get_failed", err, "answer_id", answerID)
	}

	voters, err := r.loadVoters(ctx, []int64{row.ID})
	if err != nil {
		return entities.Answer{}, err
	}
	return row.toEntity(voters[row.ID]), nil
}

func (r *Repository) UpdateAnswerContent(ctx context.Context, answerID int64, content string, modifiedAt time.Time) error {
	update := r.db.WithContext(ctx).
		Model(&answerModel{}).
		Where("id = ?", answerID).
		Updates(map[string]any{
			"content":     content,
			"modified_at": modifiedAt.UTC(),
		})
	if update.Error != nil {
		return r.logError("answer_repo_update_content_failed", update.Error, "answer_id", answerID)
	}
	if update.RowsAffected == 0 {
		return domainerrors.ErrAnswerNotFound
	}
	return nil
}

func (r *Repository) DeleteAnswer(ctx context.Context, answerID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("answer_id = ?", answerID).Delete(&answerVoterModel{}).Error; err != nil {
			return r.logError("answer_repo_delete_voters_failed", err, "answer_id", answerID)
		}
		deleted := tx.Where("id = ?", answerID).Delete(&answerModel{})
		if deleted.Error != nil {
			return r.logError("answer_repo_delete_failed", deleted.Error, "answer_id", answerID)
		}
		if deleted.RowsAffected == 0 {
			return domainerrors.ErrAnswerNotFound
		}
		return nil
	})
}

func (r *Repository) AddVoter(ctx context.Context, answerID int64, userID int64) (bool, error) {
	row := answerVoterModel{
		AnswerID: answerID,
		VoterID:  userID,
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "answer_id"}, {Name: "voter_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return false, nil
		}
		if isForeignKeyViolation(create.Error) {
			return false, domainerrors.ErrAnswerNotFound
		}
		return false, r.logError("answer_repo_add_voter_failed", create.Error,
			"answer_id", answerID,
			"user_id", userID,
		)
	}
	return create.RowsAffected > 0, nil
}

func (r *Repository) ListAnswersByQuestion(ctx context.Context, questionID int64, page ports.PageRequest) (entities.AnswerPage, error) {
	total, err := r.countByQuestion(ctx, questionID)
	if err != nil {
		return entities.AnswerPage{}, err
	}

	var rows []answerModel
	if err := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("created_at ASC").
		Order("id ASC").
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&rows).Error; err != nil {
		return entities.AnswerPage{}, r.logError("answer_repo_list_by_question_failed", err,
			"question_id", questionID,
		)
	}
	return r.toPage(ctx, rows, page, total)
}

func (r *Repository) ListAnswersByQuestionOrderedByVoteCount(
	ctx context.Context,
	questionID int64,
	page ports.PageRequest,
) (entities.AnswerPage, error) {
	total, err := r.countByQuestion(ctx, questionID)
	if err != nil {
		return entities.AnswerPage{}, err
	}

	var rows []answerModel
	err = r.db.WithContext(ctx).
		Table("answer AS a").
		Select("a.*").
		Joins("LEFT JOIN answer_voter AS v ON v.answer_id = a.id").
		Where("a.question_id = ?", questionID).
		Group("a.id").
		Order("COUNT(v.voter_id) DESC").
		Order("a.created_at ASC").
		Order("a.id ASC").
		Limit(page.Size).
		Offset(page.Offset()).
		Scan(&rows).
		Error
	if err != nil {
		return entities.AnswerPage{}, r.logError("answer_repo_list_by_vote_count_failed", err,
			"question_id", questionID,
		)
	}
	return r.toPage(ctx, rows, page, total)
}

func (r *Repository) GetQuestion(ctx context.Context, questionID int64) (entities.Question, error) {
	var row questionProjectionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", questionID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Question{}, domainerrors.ErrQuestionNotFound
		}
		return entities.Question{}, r.logError("answer_repo_get_question_failed", err, "question_id", questionID)
	}
	return entities.Question{
		QuestionID: row.ID,
		Subject:    row.Subject,
	}, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (entities.SiteUser, error) {
	var row siteUserProjectionModel
	err := r.db.WithContext(ctx).
		Where("username = ?", strings.TrimSpace(username)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.SiteUser{}, domainerrors.ErrUserNotFound
		}
		return entities.SiteUser{}, r.logError("answer_repo_get_user_failed", err,
			"username", strings.TrimSpace(username),
		)
	}
	return entities.SiteUser{
		UserID:   row.ID,
		Username: row.Username,
	}, nil
}

// Migrate creates or updates the answer tables and the question/user
// projections they read from. answer.question_id and answer_voter.answer_id
// get cascading foreign keys, so a vote racing a delete cannot leave an
// orphan voter row and inserts against missing parents fail with 23503.
func (r *Repository) Migrate(ctx context.Context) error {
	err := r.db.WithContext(ctx).AutoMigrate(
		&questionProjectionModel{},
		&siteUserProjectionModel{},
		&answerModel{},
		&answerVoterModel{},
	)
	if err != nil {
		return r.logError("answer_repo_migrate_failed", err)
	}
	return nil
}

// EnsureQuestion inserts the question projection unless a row with the same
// id already exists.
func (r *Repository) EnsureQuestion(ctx context.Context, question entities.Question) error {
	row := questionProjectionModel{ID: question.QuestionID, Subject: question.Subject}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).
		Error
	if err != nil {
		return r.logError("answer_repo_ensure_question_failed", err, "question_id", question.QuestionID)
	}
	return nil
}

func (r *Repository) countByQuestion(ctx context.Context, questionID int64) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&answerModel{}).
		Where("question_id = ?", questionID).
		Count(&total).Error; err != nil {
		return 0, r.logError("answer_repo_count_by_question_failed", err, "question_id", questionID)
	}
	return total, nil
}

func (r *Repository) loadVoters(ctx context.Context, answerIDs []int64) (map[int64][]int64, error) {
	voters := make(map[int64][]int64, len(answerIDs))
	if len(answerIDs) == 0 {
		return voters, nil
	}
	var rows []answerVoterModel
	if err := r.db.WithContext(ctx).
		Where("answer_id IN ?", answerIDs).
		Order("voter_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("answer_repo_load_voters_failed", err, "answer_count", len(answerIDs))
	}
	for _, row := range rows {
		voters[row.AnswerID] = append(voters[row.AnswerID], row.VoterID)
	}
	return voters, nil
}

func (r *Repository) toPage(ctx context.Context, rows []answerModel, page ports.PageRequest, total int64) (entities.AnswerPage, error) {
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	voters, err := r.loadVoters(ctx, ids)
	if err != nil {
		return entities.AnswerPage{}, err
	}
	items := make([]entities.Answer, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity(voters[row.ID]))
	}
	return entities.NewAnswerPage(items, page.Page, page.Size, total), nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "community-experience/answer-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("answer repository operation failed", fields...)
	return err
}

type answerModel struct {
	ID         int64      `gorm:"column:id;primaryKey"`
	QuestionID int64      `gorm:"column:question_id;index"`
	AuthorID   *int64     `gorm:"column:author_id"`
	Content    string     `gorm:"column:content"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	ModifiedAt *time.Time `gorm:"column:modified_at"`

	// Only declared for the answer_voter foreign key; never loaded.
	Voters []answerVoterModel `gorm:"foreignKey:AnswerID;references:ID;constraint:OnDelete:CASCADE"`
}

func (answerModel) TableName() string {
	return "answer"
}

func answerModelFromEntity(answer entities.Answer) answerModel {
	row := answerModel{
		ID:         answer.AnswerID,
		QuestionID: answer.QuestionID,
		AuthorID:   answer.AuthorID,
		Content:    answer.Content,
		CreatedAt:  answer.CreatedAt.UTC(),
		ModifiedAt: normalizeOptionalTime(answer.ModifiedAt),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m answerModel) toEntity(voters []int64) entities.Answer {
	return entities.Answer{
		AnswerID:   m.ID,
		QuestionID: m.QuestionID,
		AuthorID:   m.AuthorID,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt.UTC(),
		ModifiedAt: normalizeOptionalTime(m.ModifiedAt),
		VoterIDs:   voters,
	}
}

type answerVoterModel struct {
	AnswerID int64 `gorm:"column:answer_id;primaryKey;autoIncrement:false"`
	VoterID  int64 `gorm:"column:voter_id;primaryKey;autoIncrement:false"`
}

func (answerVoterModel) TableName() string {
	return "answer_voter"
}

type questionProjectionModel struct {
	ID      int64  `gorm:"column:id;primaryKey"`
	Subject string `gorm:"column:subject"`

	// Only declared for the answer.question_id foreign key; never loaded.
	Answers []answerModel `gorm:"foreignKey:QuestionID;references:ID;constraint:OnDelete:CASCADE"`
}

func (questionProjectionModel) TableName() string {
	return "question"
}

type siteUserProjectionModel struct {
	ID       int64  `gorm:"column:id;primaryKey"`
	Username string `gorm:"column:username;uniqueIndex"`
}

func (siteUserProjectionModel) TableName() string {
	return "site_user"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

var _ ports.AnswerRepository = (*Repository)(nil)
var _ ports.QuestionReader = (*Repository)(nil)
var _ ports.UserReader = (*Repository)(nil)
