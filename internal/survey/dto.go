package survey

import "time"

type SurveyResponse struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	CreatedAt   time.Time          `json:"created_at"`
	Questions   []QuestionResponse `json:"questions"`
}

type QuestionResponse struct {
	ID      int64            `json:"id"`
	Text    string           `json:"text"`
	Type    string           `json:"type"`
	Order   int              `json:"order"`
	Options []OptionResponse `json:"options,omitempty"`
}

type OptionResponse struct {
	ID    int64  `json:"id"`
	Text  string `json:"text"`
	Value string `json:"value,omitempty"`
}

type AnswerDTO struct {
	ID               int64   `json:"id"`
	Rating           *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Remarks          *string `json:"remarks,omitempty"`
	SelectedOptionID *int64  `json:"selected_option_id,omitempty"`
}

type SubmitResponseDTO struct {
	UserID     int64       `json:"user_id" validate:"required"`
	Answers    []AnswerDTO `json:"answers" validate:"dive"`
	Suggestion *string     `json:"suggestion,omitempty"`
}

type SubmitResult struct {
	Message    string `json:"message"`
	ResponseID int64  `json:"response_id"`
}
