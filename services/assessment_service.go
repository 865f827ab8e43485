package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dabhanushali/enacton-training/database"
	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/utils/access"
	"github.com/dabhanushali/enacton-training/utils/session"
	"gorm.io/gorm"
)

// AssessmentService manages assessment templates and their questions
type AssessmentService struct {
	db        *gorm.DB
	templates *database.Repository[model.AssessmentTemplate]
	questions *database.Repository[model.AssessmentQuestion]
}

// NewAssessmentService creates a new assessment service
func NewAssessmentService(db *gorm.DB) *AssessmentService {
	return &AssessmentService{
		db:        db,
		templates: database.NewRepository[model.AssessmentTemplate](db),
		questions: database.NewRepository[model.AssessmentQuestion](db),
	}
}

// TemplateInput is a template create or update
type TemplateInput struct {
	Title            *string
	Description      *string
	AssessmentType   *string
	PassingScore     *int
	TimeLimitMinutes *int
	MaxAttempts      *int
	Instructions     *string
	IsMandatory      *bool
}

// OptionInput is one answer choice
type OptionInput struct {
	OptionText string
	IsCorrect  bool
}

// QuestionInput is a full question with its option set
type QuestionInput struct {
	QuestionText  string
	QuestionType  string
	Points        int
	QuestionOrder int
	Explanation   string
	Options       []OptionInput
}

// ValidateQuestion checks a question before any write. Multiple-choice and
// true/false questions need at least two non-empty options and exactly one
// correct option among them.
func ValidateQuestion(in QuestionInput) error {
	fields := map[string]string{}

	if strings.TrimSpace(in.QuestionText) == "" {
		fields["question_text"] = "Question text is required"
	}

	qt := model.QuestionType(in.QuestionType)
	if !qt.Valid() {
		fields["question_type"] = "Unknown question type"
	}
	if in.Points < 0 {
		fields["points"] = "Points cannot be negative"
	}

	if qt.HasOptions() {
		filled, correct := 0, 0
		for _, o := range in.Options {
			if strings.TrimSpace(o.OptionText) == "" {
				continue
			}
			filled++
			if o.IsCorrect {
				correct++
			}
		}
		switch {
		case filled < 2:
			fields["options"] = "At least two non-empty options are required"
		case correct != 1:
			fields["options"] = "Exactly one option must be marked correct"
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// questionOptions returns the rows to insert for a validated question
func questionOptions(questionID uint, in QuestionInput) []model.QuestionOption {
	if !model.QuestionType(in.QuestionType).HasOptions() {
		return nil
	}
	out := make([]model.QuestionOption, 0, len(in.Options))
	for _, o := range in.Options {
		text := strings.TrimSpace(o.OptionText)
		if text == "" {
			continue
		}
		out = append(out, model.QuestionOption{
			QuestionID:  questionID,
			OptionText:  text,
			IsCorrect:   o.IsCorrect,
			OptionOrder: len(out) + 1,
		})
	}
	return out
}

// ListTemplates returns a course's templates, oldest first
func (s *AssessmentService) ListTemplates(ctx context.Context, courseID uint) ([]model.AssessmentTemplate, error) {
	rows, err := s.templates.All(ctx, database.Query{}.Where("course_id", courseID).OrderBy("created_at ASC, id ASC"))
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	return rows, nil
}

// GetTemplate loads a template with ordered questions and options. The
// answer key is left out unless sess can author courses.
func (s *AssessmentService) GetTemplate(ctx context.Context, sess *session.Session, id uint) (*model.AssessmentTemplate, error) {
	var t model.AssessmentTemplate
	err := s.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("question_order ASC, id ASC") }).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB { return db.Order("option_order ASC, id ASC") }).
		First(&t, id).Error
	if err != nil {
		return nil, fmt.Errorf("assessment %d: %w", id, database.MapError(err))
	}
	if err := s.checkVisible(ctx, sess, &t); err != nil {
		return nil, err
	}
	if !sess.Can(access.ManageCourses) {
		hideAnswers(t.Questions)
	}
	return &t, nil
}

func (s *AssessmentService) checkVisible(ctx context.Context, sess *session.Session, t *model.AssessmentTemplate) error {
	if err := visibleCourse(ctx, s.db, sess, t.CourseID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("assessment %d: %w", t.ID, ErrNotFound)
		}
		return err
	}
	return nil
}

// hideAnswers clears which options are correct and the explanations
func hideAnswers(questions []model.AssessmentQuestion) {
	for i := range questions {
		questions[i].Explanation = ""
		for j := range questions[i].Options {
			questions[i].Options[j].IsCorrect = false
		}
	}
}

// CreateTemplate adds a template to a course
func (s *AssessmentService) CreateTemplate(ctx context.Context, courseID uint, in TemplateInput) (*model.AssessmentTemplate, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, invalid("title", "Title is required")
	}
	t := model.AssessmentTemplate{
		CourseID:       courseID,
		AssessmentType: model.AssessmentTypeQuiz,
		PassingScore:   70,
		MaxAttempts:    1,
	}
	if err := applyTemplateInput(&t, in); err != nil {
		return nil, err
	}
	if err := s.templates.Create(ctx, &t); err != nil {
		if errors.Is(err, database.ErrForeignKey) {
			return nil, fmt.Errorf("course %d: %w", courseID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to create assessment: %w", err)
	}
	return &t, nil
}

// UpdateTemplate changes template fields
func (s *AssessmentService) UpdateTemplate(ctx context.Context, id uint, in TemplateInput) (*model.AssessmentTemplate, error) {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, invalid("title", "Title is required")
	}
	t, err := s.templates.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("assessment %d: %w", id, err)
	}
	if err := applyTemplateInput(t, in); err != nil {
		return nil, err
	}
	if err := s.templates.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to update assessment: %w", err)
	}
	return t, nil
}

// DeleteTemplate removes a template with its questions
func (s *AssessmentService) DeleteTemplate(ctx context.Context, id uint) error {
	if err := s.templates.Delete(ctx, id); err != nil {
		return fmt.Errorf("assessment %d: %w", id, err)
	}
	return nil
}

// ListQuestions returns a template's questions in order with their options,
// without the answer key unless sess can author courses
func (s *AssessmentService) ListQuestions(ctx context.Context, sess *session.Session, templateID uint) ([]model.AssessmentQuestion, error) {
	t, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("assessment %d: %w", templateID, err)
	}
	if err := s.checkVisible(ctx, sess, t); err != nil {
		return nil, err
	}

	var rows []model.AssessmentQuestion
	err = s.db.WithContext(ctx).
		Where("template_id = ?", templateID).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("option_order ASC, id ASC") }).
		Order("question_order ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", database.MapError(err))
	}
	if !sess.Can(access.ManageCourses) {
		hideAnswers(rows)
	}
	return rows, nil
}

// CreateQuestion validates and inserts a question and its options in one transaction
func (s *AssessmentService) CreateQuestion(ctx context.Context, templateID uint, in QuestionInput) (*model.AssessmentQuestion, error) {
	if err := ValidateQuestion(in); err != nil {
		return nil, err
	}

	var q model.AssessmentQuestion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var template model.AssessmentTemplate
		if err := tx.Select("id").First(&template, templateID).Error; err != nil {
			return fmt.Errorf("assessment %d: %w", templateID, database.MapError(err))
		}

		order := in.QuestionOrder
		if order <= 0 {
			var highest *int
			if err := tx.Model(&model.AssessmentQuestion{}).
				Where("template_id = ?", templateID).
				Select("MAX(question_order)").
				Scan(&highest).Error; err != nil {
				return database.MapError(err)
			}
			order = 1
			if highest != nil {
				order = *highest + 1
			}
		}

		q = model.AssessmentQuestion{
			TemplateID:    templateID,
			QuestionText:  strings.TrimSpace(in.QuestionText),
			QuestionType:  model.QuestionType(in.QuestionType),
			Points:        in.Points,
			QuestionOrder: order,
			Explanation:   in.Explanation,
		}
		if err := tx.Create(&q).Error; err != nil {
			return database.MapError(err)
		}
		return s.replaceOptions(tx, &q, in)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save question: %w", err)
	}
	return &q, nil
}

// UpdateQuestion validates the question and replaces its whole option set
func (s *AssessmentService) UpdateQuestion(ctx context.Context, id uint, in QuestionInput) (*model.AssessmentQuestion, error) {
	if err := ValidateQuestion(in); err != nil {
		return nil, err
	}

	var q model.AssessmentQuestion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&q, id).Error; err != nil {
			return fmt.Errorf("question %d: %w", id, database.MapError(err))
		}

		q.QuestionText = strings.TrimSpace(in.QuestionText)
		q.QuestionType = model.QuestionType(in.QuestionType)
		q.Points = in.Points
		q.Explanation = in.Explanation
		if in.QuestionOrder > 0 {
			q.QuestionOrder = in.QuestionOrder
		}
		if err := tx.Omit("Options").Save(&q).Error; err != nil {
			return database.MapError(err)
		}
		return s.replaceOptions(tx, &q, in)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save question: %w", err)
	}
	return &q, nil
}

// replaceOptions deletes the stored options and inserts the new set
func (s *AssessmentService) replaceOptions(tx *gorm.DB, q *model.AssessmentQuestion, in QuestionInput) error {
	if err := tx.Where("question_id = ?", q.ID).Delete(&model.QuestionOption{}).Error; err != nil {
		return fmt.Errorf("failed to clear options: %w", database.MapError(err))
	}
	q.Options = questionOptions(q.ID, in)
	if len(q.Options) == 0 {
		return nil
	}
	if err := tx.Create(&q.Options).Error; err != nil {
		return fmt.Errorf("failed to insert options: %w", database.MapError(err))
	}
	return nil
}

// DeleteQuestion removes a question and its options
func (s *AssessmentService) DeleteQuestion(ctx context.Context, id uint) error {
	if err := s.questions.Delete(ctx, id); err != nil {
		return fmt.Errorf("question %d: %w", id, err)
	}
	return nil
}

func applyTemplateInput(t *model.AssessmentTemplate, in TemplateInput) error {
	if in.Title != nil {
		t.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.AssessmentType != nil {
		at := model.AssessmentType(*in.AssessmentType)
		if !at.Valid() {
			return invalid("assessment_type", "Unknown assessment type")
		}
		t.AssessmentType = at
	}
	if in.PassingScore != nil {
		if *in.PassingScore < 0 || *in.PassingScore > 100 {
			return invalid("passing_score", "Passing score must be between 0 and 100")
		}
		t.PassingScore = *in.PassingScore
	}
	if in.TimeLimitMinutes != nil {
		t.TimeLimitMinutes = *in.TimeLimitMinutes
	}
	if in.MaxAttempts != nil {
		t.MaxAttempts = *in.MaxAttempts
	}
	if in.Instructions != nil {
		t.Instructions = *in.Instructions
	}
	if in.IsMandatory != nil {
		t.IsMandatory = *in.IsMandatory
	}
	return nil
}
