package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/frahmantamala/insight-pulse/internal"
	"github.com/frahmantamala/insight-pulse/internal/daterange"
	"github.com/frahmantamala/insight-pulse/internal/department"
	"github.com/frahmantamala/insight-pulse/internal/permission"
	"github.com/frahmantamala/insight-pulse/internal/remarks"
	"github.com/frahmantamala/insight-pulse/internal/survey"
	"github.com/frahmantamala/insight-pulse/internal/user"
)

// Login prompts for the password when it was not given.
func (a *App) Login(ctx context.Context, username, password string) error {
	if password == "" && a.passwords != nil && strings.TrimSpace(username) != "" {
		pwd, err := a.passwords.ReadPassword("Password: ")
		if err != nil {
			return err
		}
		password = pwd
	}

	dest, err := a.session.Login(ctx, username, password)
	if err != nil {
		return err
	}
	u, _ := a.session.Current()
	a.backend.SetActor(u.Username)
	fmt.Fprintf(a.out, "Signed in as %s (%s), landing on %s\n", u.Username, u.Role, dest)
	return nil
}

func (a *App) Logout() {
	a.session.Logout()
	a.backend.SetActor("")
}

func (a *App) WhoAmI() error {
	u, err := a.session.RequireAuthenticated()
	if err != nil {
		return err
	}
	t := newTable("Field", "Value")
	t.Row("ID", strconv.FormatInt(u.ID, 10))
	t.Row("Username", u.Username)
	t.Row("Name", u.Name)
	t.Row("Email", u.Email)
	t.Row("Department", u.Department)
	t.Row("Role", u.Role)
	fmt.Fprintln(a.out, t.Render())
	return nil
}

func (a *App) ListDepartments(ctx context.Context) error {
	if _, err := a.session.RequireAuthenticated(); err != nil {
		return err
	}
	depts, err := a.backend.ListDepartments(ctx)
	if err != nil {
		return err
	}
	renderDepartments(a.out, depts)
	return nil
}

func (a *App) CreateDepartment(ctx context.Context, name string) (department.Department, error) {
	if _, err := a.session.RequireRole(user.RoleAdmin); err != nil {
		return department.Department{}, err
	}
	d, err := a.backend.CreateDepartment(ctx, name)
	if err != nil {
		return department.Department{}, err
	}
	fmt.Fprintf(a.out, "Created department %q (id %d)\n", d.Name, d.ID)
	return d, nil
}

// ShowPermissions loads the matrix from the backend and prints it.
func (a *App) ShowPermissions(ctx context.Context) error {
	if err := a.refresh(ctx); err != nil {
		return err
	}
	renderMatrix(a.out, a.sync.Departments(), a.sync.Matrix())
	return nil
}

// Toggle flips each from/to pair named by department and saves the result.
func (a *App) Toggle(ctx context.Context, pairs [][2]string) error {
	if err := a.refresh(ctx); err != nil {
		return err
	}

	depts := a.sync.Departments()
	for _, p := range pairs {
		from, ok := department.FindByName(depts, p[0])
		if !ok {
			return apperrors.ErrUnknownDepartment.WithMessage(fmt.Sprintf("Department %q not found.", p[0]))
		}
		to, ok := department.FindByName(depts, p[1])
		if !ok {
			return apperrors.ErrUnknownDepartment.WithMessage(fmt.Sprintf("Department %q not found.", p[1]))
		}
		if !a.sync.Toggle(from.ID, to.ID) {
			return apperrors.NewValidationError("A department cannot survey itself.", apperrors.ErrCodeInvalidPair)
		}
	}
	return a.sync.Save(ctx)
}

func (a *App) AllowAll(ctx context.Context, name string) error {
	return a.setAll(ctx, name, a.sync.AllowAll)
}

func (a *App) RevokeAll(ctx context.Context, name string) error {
	return a.setAll(ctx, name, a.sync.RevokeAll)
}

func (a *App) setAll(ctx context.Context, name string, apply func(string) error) error {
	if err := a.refresh(ctx); err != nil {
		return err
	}
	if err := apply(name); err != nil {
		return err
	}
	return a.sync.Save(ctx)
}

type AlertRequest struct {
	Preset string
	// From and To are dates in YYYY-MM-DD, used with the custom preset.
	From string
	To   string
}

// SendAlert mails everyone affected by the stored permissions for the
// chosen period.
func (a *App) SendAlert(ctx context.Context, req AlertRequest) (permission.MailAlertResponse, error) {
	preset := daterange.PresetCustom
	if req.Preset != "" {
		p, err := daterange.ParsePreset(req.Preset)
		if err != nil {
			return permission.MailAlertResponse{}, err
		}
		preset = p
	}

	picker := daterange.NewPicker(daterange.WithClock(a.now))
	picker.OnChange(func(r daterange.Range) {
		a.logger.Debug("survey period changed", "range", r.String())
	})
	if err := picker.Select(preset); err != nil {
		return permission.MailAlertResponse{}, err
	}
	if preset == daterange.PresetCustom {
		from, err := parseDay(req.From, a.now().Location())
		if err != nil {
			return permission.MailAlertResponse{}, err
		}
		to, err := parseDay(req.To, a.now().Location())
		if err != nil {
			return permission.MailAlertResponse{}, err
		}
		if to != nil {
			end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
			to = &end
		}
		picker.SetStart(from)
		picker.SetEnd(to)
	}

	if err := a.refresh(ctx); err != nil {
		return permission.MailAlertResponse{}, err
	}
	resp, err := a.sync.SendAlert(ctx, picker.Range())
	if err != nil {
		return permission.MailAlertResponse{}, err
	}
	for _, line := range resp.AlertDetails {
		fmt.Fprintln(a.out, "  "+line)
	}
	return resp, nil
}

func parseDay(value string, loc *time.Location) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value), apperrors.ErrCodeInvalidDate)
	}
	return &t, nil
}

func (a *App) refresh(ctx context.Context) error {
	if _, err := a.session.RequireRole(user.RoleAdmin); err != nil {
		return err
	}
	return a.sync.Refresh(ctx)
}

func (a *App) ShowSurvey(ctx context.Context, id int64) error {
	if _, err := a.session.RequireAuthenticated(); err != nil {
		return err
	}
	s, err := a.backend.GetSurvey(ctx, id)
	if err != nil {
		return err
	}
	renderSurvey(a.out, s)
	return nil
}

// SubmitSurvey answers a survey as the logged-in user. Each answer is
// "QUESTION_ID=VALUE"; the value is read as a rating, an option id or free
// text depending on the question type.
func (a *App) SubmitSurvey(ctx context.Context, id int64, answers []string, suggestion string) (survey.SubmitResult, error) {
	u, err := a.session.RequireAuthenticated()
	if err != nil {
		return survey.SubmitResult{}, err
	}
	s, err := a.backend.GetSurvey(ctx, id)
	if err != nil {
		return survey.SubmitResult{}, err
	}

	dto := survey.SubmitResponseDTO{UserID: u.ID}
	for _, raw := range answers {
		ans, err := parseAnswer(s, raw)
		if err != nil {
			return survey.SubmitResult{}, err
		}
		dto.Answers = append(dto.Answers, ans)
	}
	if strings.TrimSpace(suggestion) != "" {
		dto.Suggestion = &suggestion
	}

	res, err := a.backend.SubmitSurveyResponse(ctx, id, dto)
	if err != nil {
		return survey.SubmitResult{}, err
	}
	fmt.Fprintf(a.out, "%s (response %d)\n", res.Message, res.ResponseID)
	return res, nil
}

func parseAnswer(s survey.SurveyResponse, raw string) (survey.AnswerDTO, error) {
	key, value, ok := strings.Cut(raw, "=")
	if !ok {
		return survey.AnswerDTO{}, apperrors.NewValidationError(fmt.Sprintf("answer %q must look like QUESTION_ID=VALUE", raw), apperrors.ErrCodeValidationFailed)
	}
	qid, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
	if err != nil {
		return survey.AnswerDTO{}, apperrors.NewValidationError(fmt.Sprintf("invalid question id %q", key), apperrors.ErrCodeValidationFailed)
	}

	var q *survey.QuestionResponse
	for i := range s.Questions {
		if s.Questions[i].ID == qid {
			q = &s.Questions[i]
			break
		}
	}
	if q == nil {
		return survey.AnswerDTO{}, apperrors.NewValidationError(fmt.Sprintf("question %d is not part of this survey", qid), apperrors.ErrCodeValidationFailed)
	}

	ans := survey.AnswerDTO{ID: qid}
	value = strings.TrimSpace(value)
	switch survey.QuestionType(q.Type) {
	case survey.QuestionRating:
		n, err := strconv.Atoi(value)
		if err != nil {
			return survey.AnswerDTO{}, apperrors.NewValidationError(fmt.Sprintf("rating for question %d must be a number", qid), apperrors.ErrCodeValidationFailed)
		}
		ans.Rating = &n
	case survey.QuestionMultipleChoice:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return survey.AnswerDTO{}, apperrors.NewValidationError(fmt.Sprintf("choice for question %d must be an option id", qid), apperrors.ErrCodeValidationFailed)
		}
		ans.SelectedOptionID = &n
	default:
		ans.Remarks = &value
	}
	return ans, nil
}

// ShowRemarks prints the incoming and outgoing feedback at the 1-based
// page given for each.
func (a *App) ShowRemarks(incoming, outgoing int) error {
	if _, err := a.session.RequireAuthenticated(); err != nil {
		return err
	}
	a.seekRemarks(incoming, outgoing)

	if f, ok := a.remarks.Incoming(); ok {
		renderIncoming(a.out, f, a.remarks.IncomingPosition())
	}
	fmt.Fprintln(a.out)
	if f, ok := a.remarks.Outgoing(); ok {
		renderOutgoing(a.out, f, a.remarks.OutgoingPosition())
	}
	return nil
}

// RespondRemark answers the incoming feedback at the 1-based page.
func (a *App) RespondRemark(page int, form remarks.ResponseForm) error {
	if _, err := a.session.RequireAuthenticated(); err != nil {
		return err
	}
	a.seekRemarks(page, 1)
	a.remarks.SetForm(form)
	_, err := a.remarks.Submit()
	return err
}

func (a *App) seekRemarks(incoming, outgoing int) {
	for i := 1; i < incoming; i++ {
		a.remarks.NextIncoming()
	}
	for i := 1; i < outgoing; i++ {
		a.remarks.NextOutgoing()
	}
}
