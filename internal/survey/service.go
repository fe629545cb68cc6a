package survey

import (
	"log/slog"
	"time"

	apperrors "github.com/frahmantamala/insight-pulse/internal"
	"github.com/frahmantamala/insight-pulse/internal/core/common/validation"
	surveyDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/survey"
)

const msgUserIDRequired = "User ID is required for submission"

type RepositoryAPI interface {
	GetByID(id int64) (*surveyDatamodel.Survey, error)
	CreateResponse(response *surveyDatamodel.Response) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) Get(id int64) (*Survey, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to load survey", "survey_id", id, "error", err)
		return nil, apperrors.NewInternalError("failed to load survey", err)
	}
	if row == nil {
		return nil, apperrors.ErrSurveyNotFound
	}
	return FromDataModel(row), nil
}

// Submit stores one response with its answers. Answers to questions that
// are not part of the survey are skipped, as are selected options that do
// not belong to the answered question.
func (s *Service) Submit(surveyID int64, dto SubmitResponseDTO) (*SubmitResult, error) {
	if dto.UserID == 0 {
		return nil, apperrors.NewValidationError(msgUserIDRequired, apperrors.ErrCodeValidationFailed)
	}
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	sv, err := s.Get(surveyID)
	if err != nil {
		return nil, err
	}

	response := &surveyDatamodel.Response{
		SurveyID:    surveyID,
		UserID:      dto.UserID,
		SubmittedAt: s.now().UTC(),
	}
	if dto.Suggestion != nil {
		response.FinalSuggestion = *dto.Suggestion
	}

	skipped := 0
	for _, a := range dto.Answers {
		q, ok := sv.Question(a.ID)
		if !ok {
			skipped++
			continue
		}
		answer := surveyDatamodel.Answer{QuestionID: q.ID, Rating: a.Rating}
		if a.Remarks != nil {
			answer.TextAnswer = *a.Remarks
		}
		if a.SelectedOptionID != nil && q.HasOption(*a.SelectedOptionID) {
			opt := *a.SelectedOptionID
			answer.SelectedOptionID = &opt
		}
		response.Answers = append(response.Answers, answer)
	}

	if err := s.repo.CreateResponse(response); err != nil {
		s.logger.Error("failed to store survey response", "survey_id", surveyID, "user_id", dto.UserID, "error", err)
		return nil, apperrors.NewInternalError("Database error during response creation.", err)
	}

	s.logger.Info("survey response stored",
		"survey_id", surveyID,
		"response_id", response.ID,
		"answers", len(response.Answers),
		"skipped", skipped)

	return &SubmitResult{Message: "Survey submitted successfully", ResponseID: response.ID}, nil
}
