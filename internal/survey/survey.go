package survey

import (
	"sort"
	"time"

	surveyDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/survey"
)

type QuestionType string

const (
	QuestionRating         QuestionType = "rating"
	QuestionText           QuestionType = "text"
	QuestionMultipleChoice QuestionType = "multiple_choice"
)

type Survey struct {
	ID          int64
	Title       string
	Description string
	CreatedAt   time.Time
	Questions   []Question
}

type Question struct {
	ID      int64
	Text    string
	Type    QuestionType
	Order   int
	Options []Option
}

type Option struct {
	ID    int64
	Text  string
	Value string
}

// Question looks up a question of this survey by id.
func (s *Survey) Question(id int64) (*Question, bool) {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i], true
		}
	}
	return nil, false
}

func (q *Question) HasOption(id int64) bool {
	for _, o := range q.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

func (s *Survey) ToResponse() SurveyResponse {
	resp := SurveyResponse{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		Questions:   make([]QuestionResponse, 0, len(s.Questions)),
	}
	for _, q := range s.Questions {
		qr := QuestionResponse{ID: q.ID, Text: q.Text, Type: string(q.Type), Order: q.Order}
		if q.Type == QuestionMultipleChoice {
			qr.Options = make([]OptionResponse, 0, len(q.Options))
			for _, o := range q.Options {
				qr.Options = append(qr.Options, OptionResponse{ID: o.ID, Text: o.Text, Value: o.Value})
			}
		}
		resp.Questions = append(resp.Questions, qr)
	}
	return resp
}

// FromDataModel converts a loaded survey row; questions come back sorted by
// their order column.
func FromDataModel(s *surveyDatamodel.Survey) *Survey {
	out := &Survey{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		Questions:   make([]Question, 0, len(s.Questions)),
	}
	for _, q := range s.Questions {
		question := Question{ID: q.ID, Text: q.Text, Type: QuestionType(q.Type), Order: q.Order}
		for _, o := range q.Options {
			question.Options = append(question.Options, Option{ID: o.ID, Text: o.Text, Value: o.Value})
		}
		out.Questions = append(out.Questions, question)
	}
	sort.SliceStable(out.Questions, func(i, j int) bool {
		return out.Questions[i].Order < out.Questions[j].Order
	})
	return out
}
