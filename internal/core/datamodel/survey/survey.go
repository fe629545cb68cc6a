package survey

import "time"

type Survey struct {
	ID          int64      `gorm:"primaryKey"`
	Title       string     `gorm:"column:title;not null"`
	Description string     `gorm:"column:description"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	Questions   []Question `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE"`
}

func (Survey) TableName() string {
	return "surveys"
}

type Question struct {
	ID       int64    `gorm:"primaryKey"`
	SurveyID int64    `gorm:"column:survey_id;not null;index"`
	Text     string   `gorm:"column:text;not null"`
	Type     string   `gorm:"column:type;not null"`
	Order    int      `gorm:"column:order;not null"`
	Options  []Option `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

func (Question) TableName() string {
	return "questions"
}

type Option struct {
	ID         int64  `gorm:"primaryKey"`
	QuestionID int64  `gorm:"column:question_id;not null;index"`
	Text       string `gorm:"column:text;not null"`
	Value      string `gorm:"column:value"`
}

func (Option) TableName() string {
	return "question_options"
}

type Response struct {
	ID              int64     `gorm:"primaryKey"`
	SurveyID        int64     `gorm:"column:survey_id;not null;index"`
	UserID          int64     `gorm:"column:user_id;not null"`
	SubmittedAt     time.Time `gorm:"column:submitted_at"`
	FinalSuggestion string    `gorm:"column:final_suggestion"`
	Answers         []Answer  `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE"`
}

func (Response) TableName() string {
	return "survey_responses"
}

type Answer struct {
	ID               int64  `gorm:"primaryKey"`
	ResponseID       int64  `gorm:"column:response_id;not null;index"`
	QuestionID       int64  `gorm:"column:question_id;not null"`
	Rating           *int   `gorm:"column:rating"`
	TextAnswer       string `gorm:"column:text_answer"`
	SelectedOptionID *int64 `gorm:"column:selected_option_id"`
}

func (Answer) TableName() string {
	return "question_answers"
}
