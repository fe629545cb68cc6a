package permission_test

import (
	"context"
	"errors"
	"sync"

	apperrors "github.com/frahmantamala/insight-pulse/internal"
	permissionDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/permission"
	"github.com/frahmantamala/insight-pulse/internal/core/events"
	"github.com/frahmantamala/insight-pulse/internal/department"
	"github.com/frahmantamala/insight-pulse/internal/permission"
	"github.com/frahmantamala/insight-pulse/internal/user"
	"github.com/frahmantamala/insight-pulse/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// MockRepository implements permission.RepositoryAPI for testing
type MockRepository struct {
	rows       []*permissionDatamodel.Permission
	replaced   int
	shouldFail bool
}

func (m *MockRepository) GetAll() ([]*permissionDatamodel.Permission, error) {
	if m.shouldFail {
		return nil, errors.New("database error")
	}
	return m.rows, nil
}

func (m *MockRepository) ReplaceAll(rows []*permissionDatamodel.Permission) error {
	if m.shouldFail {
		return errors.New("database error")
	}
	m.replaced++
	m.rows = rows
	return nil
}

type stubDepartments struct {
	departments []department.Department
	err         error
}

func (s stubDepartments) GetAll() ([]department.Department, error) {
	return s.departments, s.err
}

type stubUsers struct {
	users     []user.User
	requested []string
}

func (s *stubUsers) InDepartments(ctx context.Context, names []string) ([]user.User, error) {
	s.requested = names
	var out []user.User
	for _, u := range s.users {
		for _, n := range names {
			if u.Department == n {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func ids(from, to int64) permission.PairDTO {
	return permission.PairDTO{FromDeptID: &from, ToDeptID: &to}
}

var _ = Describe("Permission Service", func() {
	var (
		repo      *MockRepository
		users     *stubUsers
		publisher *recordingPublisher
		service   *permission.Service
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = &MockRepository{}
		users = &stubUsers{users: []user.User{
			{ID: 1, Username: "sari", Name: "Sari", Email: "sari@example.com", Department: "Finance"},
			{ID: 2, Username: "budi", Name: "Budi", Email: "budi@example.com", Department: "Production"},
		}}
		publisher = &recordingPublisher{}
		depts := stubDepartments{departments: []department.Department{
			{ID: 1, Name: "Finance"}, {ID: 2, Name: "HR"}, {ID: 3, Name: "Production"},
		}}
		service = permission.NewService(repo, depts, users, publisher, logger.Discard())
	})

	Describe("GetAll", func() {
		It("maps rows to pairs", func() {
			repo.rows = []*permissionDatamodel.Permission{{FromDeptID: 1, ToDeptID: 2}}
			pairs, err := service.GetAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(pairs).To(Equal([]permission.Pair{{FromDeptID: 1, ToDeptID: 2}}))
		})

		It("wraps repository failures", func() {
			repo.shouldFail = true
			_, err := service.GetAll()
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(apperrors.ErrorTypeInternal))
		})
	})

	Describe("Save", func() {
		It("drops self pairs and duplicates", func() {
			count, err := service.Save(ctx, permission.SaveRequest{AllowedPairs: []permission.PairDTO{
				ids(1, 2), ids(2, 2), ids(1, 2), ids(3, 1),
			}})
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(2))
			Expect(repo.rows).To(HaveLen(2))
			Expect(publisher.events).To(HaveLen(1))
			Expect(publisher.events[0].EventType()).To(Equal(events.EventTypePermissionsSaved))
		})

		It("accepts an empty batch", func() {
			count, err := service.Save(ctx, permission.SaveRequest{})
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(0))
			Expect(repo.replaced).To(Equal(1))
		})

		It("rejects the batch when a pair lacks an id", func() {
			from := int64(1)
			_, err := service.Save(ctx, permission.SaveRequest{AllowedPairs: []permission.PairDTO{
				ids(1, 2), {FromDeptID: &from},
			}})
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
			Expect(appErr.Message).To(ContainSubstring("'from_dept_id' and 'to_dept_id' are required"))
			Expect(repo.replaced).To(Equal(0))
		})
	})

	Describe("MailAlert", func() {
		request := func(pairs ...permission.PairDTO) permission.MailAlertRequest {
			return permission.MailAlertRequest{
				AllowedPairs: pairs,
				StartDate:    "2024-04-01T00:00:00.000Z",
				EndDate:      "2024-04-30T23:59:59.999Z",
			}
		}

		It("summarizes each affected user and publishes one event per user", func() {
			resp, err := service.MailAlert(ctx, request(ids(1, 2), ids(1, 3), ids(3, 1)))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.AlertDetails).To(HaveLen(2))
			Expect(resp.AlertDetails).To(ContainElement(
				"Email to user 'sari' (sari@example.com) from department 'Finance'. Can now survey: HR, Production. Survey period: 2024-04-01 to 2024-04-30.",
			))
			Expect(users.requested).To(Equal([]string{"Finance", "Production"}))
			Expect(publisher.events).To(HaveLen(2))

			alert, ok := publisher.events[0].(*events.MailAlertRequestedEvent)
			Expect(ok).To(BeTrue())
			Expect(alert.Email).To(Equal("sari@example.com"))
			Expect(alert.SurveyableDepts).To(Equal([]string{"HR", "Production"}))
		})

		It("answers politely when nobody is affected", func() {
			resp, err := service.MailAlert(ctx, request(ids(2, 1)))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message).To(Equal("No relevant users found for mail alert."))
			Expect(publisher.events).To(BeEmpty())
		})

		It("requires pairs and both dates", func() {
			_, err := service.MailAlert(ctx, permission.MailAlertRequest{StartDate: "2024-04-01"})
			Expect(err).To(MatchError(ContainSubstring("Missing allowed_pairs or date range")))
		})

		It("rejects unparsable dates", func() {
			req := request(ids(1, 2))
			req.EndDate = "next tuesday"
			_, err := service.MailAlert(ctx, req)
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeInvalidDate))
		})

		It("rejects an end before the start", func() {
			req := request(ids(1, 2))
			req.StartDate, req.EndDate = req.EndDate, req.StartDate
			_, err := service.MailAlert(ctx, req)
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeInvalidDateRange))
		})

		It("rejects pairs without ids", func() {
			to := int64(2)
			_, err := service.MailAlert(ctx, request(permission.PairDTO{ToDeptID: &to}))
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeInvalidPair))
		})
	})
})
