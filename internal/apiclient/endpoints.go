package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/frahmantamala/insight-pulse/internal/department"
	"github.com/frahmantamala/insight-pulse/internal/permission"
	"github.com/frahmantamala/insight-pulse/internal/session"
	"github.com/frahmantamala/insight-pulse/internal/survey"
	"github.com/frahmantamala/insight-pulse/internal/user"
)

// ISOLayout is how dates travel to the backend: UTC with milliseconds.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login posts credentials and returns the backend's user record unchecked;
// validating the record is up to the session.
func (c *Client) Login(ctx context.Context, username, password string) (session.User, error) {
	var u session.User
	err := c.do(ctx, http.MethodPost, "/login", loginRequest{Username: username, Password: password}, &u)
	return u, err
}

func (c *Client) ListDepartments(ctx context.Context) ([]department.Department, error) {
	var depts []department.Department
	if err := c.do(ctx, http.MethodGet, "/api/departments", nil, &depts); err != nil {
		return nil, err
	}
	return depts, nil
}

func (c *Client) CreateDepartment(ctx context.Context, name string) (department.Department, error) {
	var d department.Department
	err := c.do(ctx, http.MethodPost, "/api/departments", department.CreateDepartmentDTO{Name: name}, &d)
	return d, err
}

func (c *Client) ListPermissions(ctx context.Context) ([]permission.Pair, error) {
	var pairs []permission.Pair
	if err := c.do(ctx, http.MethodGet, "/api/permissions", nil, &pairs); err != nil {
		return nil, err
	}
	return pairs, nil
}

func (c *Client) SavePermissions(ctx context.Context, pairs []permission.Pair) error {
	req := permission.SaveRequest{AllowedPairs: permission.ToDTOs(pairs)}
	var resp permission.MessageResponse
	return c.do(ctx, http.MethodPost, "/api/permissions/save", req, &resp)
}

func (c *Client) SendMailAlert(ctx context.Context, pairs []permission.Pair, start, end time.Time) (permission.MailAlertResponse, error) {
	req := permission.MailAlertRequest{
		AllowedPairs: permission.ToDTOs(pairs),
		StartDate:    FormatISO(start),
		EndDate:      FormatISO(end),
	}
	var resp permission.MailAlertResponse
	err := c.do(ctx, http.MethodPost, "/api/permissions/mail-alert", req, &resp)
	return resp, err
}

func (c *Client) GetSurvey(ctx context.Context, id int64) (survey.SurveyResponse, error) {
	var resp survey.SurveyResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/surveys/%d", id), nil, &resp)
	return resp, err
}

func (c *Client) SubmitSurveyResponse(ctx context.Context, id int64, dto survey.SubmitResponseDTO) (survey.SubmitResult, error) {
	var resp survey.SubmitResult
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/surveys/%d/submit_response", id), dto, &resp)
	return resp, err
}

func (c *Client) ListUsers(ctx context.Context) ([]user.UserResponse, error) {
	var users []user.UserResponse
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Ping checks the backend's liveness endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/v1/ping", nil, nil)
}
