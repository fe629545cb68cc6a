package postgres

import (
	"errors"

	surveyDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/survey"
	"gorm.io/gorm"
)

type SurveyRepository struct {
	db *gorm.DB
}

func NewSurveyRepository(db *gorm.DB) *SurveyRepository {
	return &SurveyRepository{db: db}
}

// GetByID loads a survey with its questions and their options. A missing
// survey is reported as (nil, nil).
func (r *SurveyRepository) GetByID(id int64) (*surveyDatamodel.Survey, error) {
	var row surveyDatamodel.Survey
	err := r.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order" ASC`)
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// CreateResponse inserts the response and its answers in one transaction.
func (r *SurveyRepository) CreateResponse(response *surveyDatamodel.Response) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(response).Error
	})
}

// Create inserts a survey together with its questions and options.
func (r *SurveyRepository) Create(s *surveyDatamodel.Survey) error {
	return r.db.Create(s).Error
}
