package permission_test

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "github.com/frahmantamala/insight-pulse/internal"
	"github.com/frahmantamala/insight-pulse/internal/daterange"
	"github.com/frahmantamala/insight-pulse/internal/department"
	"github.com/frahmantamala/insight-pulse/internal/notify"
	"github.com/frahmantamala/insight-pulse/internal/permission"
	"github.com/frahmantamala/insight-pulse/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeRemote struct {
	mu          sync.Mutex
	departments []department.Department
	pairs       []permission.Pair
	deptErr     error
	listErr     error
	saveErr     error
	alertErr    error
	saved       [][]permission.Pair
	alerts      int
	alertStart  time.Time
	alertEnd    time.Time
	block       chan struct{}
	started     chan struct{}
}

func (f *fakeRemote) wait() {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeRemote) ListDepartments(ctx context.Context) ([]department.Department, error) {
	if f.deptErr != nil {
		return nil, f.deptErr
	}
	return f.departments, nil
}

func (f *fakeRemote) ListPermissions(ctx context.Context) ([]permission.Pair, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.pairs, nil
}

func (f *fakeRemote) SavePermissions(ctx context.Context, pairs []permission.Pair) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, pairs)
	return nil
}

func (f *fakeRemote) SendMailAlert(ctx context.Context, pairs []permission.Pair, start, end time.Time) (permission.MailAlertResponse, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.alertErr != nil {
		return permission.MailAlertResponse{}, f.alertErr
	}
	f.alerts++
	f.alertStart, f.alertEnd = start, end
	return permission.MailAlertResponse{Message: "ok"}, nil
}

func (f *fakeRemote) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

var _ = Describe("SyncClient", func() {
	var (
		remote   *fakeRemote
		recorder *notify.Recorder
		client   *permission.SyncClient
		ctx      context.Context
	)

	depts := []department.Department{{ID: 1, Name: "Finance"}, {ID: 2, Name: "HR"}, {ID: 3, Name: "Production"}}

	BeforeEach(func() {
		ctx = context.Background()
		remote = &fakeRemote{
			departments: depts,
			pairs:       []permission.Pair{{FromDeptID: 1, ToDeptID: 2}},
		}
		recorder = &notify.Recorder{}
		client = permission.NewSyncClient(remote, recorder, logger.Discard())
	})

	Describe("SetDepartments", func() {
		It("initializes with everything allowed", func() {
			client.SetDepartments(depts)
			Expect(client.Matrix().CountAllowed()).To(Equal(6))
		})

		It("keeps local edits when the set is unchanged", func() {
			client.SetDepartments(depts)
			client.Toggle(1, 2)
			client.SetDepartments([]department.Department{depts[2], depts[0], depts[1]})
			Expect(client.Matrix().Allowed(1, 2)).To(BeFalse())
		})

		It("re-initializes when the set changes", func() {
			client.SetDepartments(depts)
			client.Toggle(1, 2)
			client.SetDepartments(append(depts, department.Department{ID: 4, Name: "QA"}))
			Expect(client.Matrix().CountAllowed()).To(Equal(12))
		})
	})

	Describe("Refresh", func() {
		It("loads departments and reconciles stored pairs", func() {
			Expect(client.Refresh(ctx)).To(Succeed())

			m := client.Matrix()
			Expect(m.Len()).To(Equal(3))
			Expect(m.ToAllowedPairs()).To(Equal([]permission.Pair{{FromDeptID: 1, ToDeptID: 2}}))
			Expect(client.Departments()).To(HaveLen(3))
			Expect(recorder.Notices()).To(BeEmpty())
		})

		It("records a load error when departments cannot be fetched", func() {
			remote.deptErr = apperrors.ErrBackendUnavailable

			Expect(client.Refresh(ctx)).NotTo(Succeed())
			Expect(client.LoadError()).To(HaveOccurred())
			Expect(recorder.Last().Variant).To(Equal(notify.VariantDestructive))
		})
	})

	Describe("Load", func() {
		It("leaves the matrix untouched on failure", func() {
			client.SetDepartments(depts)
			client.Toggle(2, 3)
			remote.listErr = errors.New("connection refused")

			Expect(client.Load(ctx)).NotTo(Succeed())
			Expect(client.Matrix().CountAllowed()).To(Equal(5))
			Expect(recorder.Last().Description).To(ContainSubstring("Failed to load permissions"))
		})

		It("does not record a load error when only the permissions fail", func() {
			client.SetDepartments(depts)
			remote.listErr = errors.New("down")
			Expect(client.Load(ctx)).NotTo(Succeed())
			Expect(client.LoadError()).NotTo(HaveOccurred())
		})

		It("clears an earlier department error once a refresh succeeds", func() {
			remote.deptErr = errors.New("down")
			Expect(client.Refresh(ctx)).NotTo(Succeed())
			Expect(client.LoadError()).To(HaveOccurred())

			remote.deptErr = nil
			Expect(client.Refresh(ctx)).To(Succeed())
			Expect(client.LoadError()).NotTo(HaveOccurred())
		})
	})

	Describe("Save", func() {
		BeforeEach(func() {
			Expect(client.Refresh(ctx)).To(Succeed())
		})

		It("sends the sparse projection as one batch", func() {
			client.Toggle(3, 1)
			Expect(client.Save(ctx)).To(Succeed())

			Expect(remote.saved).To(HaveLen(1))
			Expect(remote.saved[0]).To(ConsistOf(
				permission.Pair{FromDeptID: 1, ToDeptID: 2},
				permission.Pair{FromDeptID: 3, ToDeptID: 1},
			))
			Expect(recorder.Last().Title).To(Equal("Permissions Saved"))
		})

		It("shows the backend message on failure and keeps the matrix", func() {
			remote.saveErr = apperrors.NewExternalError("Failed to save permissions due to data integrity issue", apperrors.ErrCodeBackendRejected, 400)

			Expect(client.Save(ctx)).NotTo(Succeed())
			Expect(recorder.Last().Description).To(Equal("Failed to save permissions due to data integrity issue"))
			Expect(client.Matrix().CountAllowed()).To(Equal(1))
		})

		It("falls back to a generic message when the backend is unreachable", func() {
			remote.saveErr = apperrors.ErrBackendUnavailable

			Expect(client.Save(ctx)).NotTo(Succeed())
			Expect(recorder.Last().Description).To(Equal("Failed to save permissions. Please try again."))
		})

		It("refuses after the departments failed to load", func() {
			remote.deptErr = errors.New("down")
			Expect(client.Refresh(ctx)).NotTo(Succeed())

			err := client.Save(ctx)
			Expect(errors.Is(err, apperrors.ErrDataNotLoaded)).To(BeTrue())
			Expect(remote.saveCount()).To(Equal(0))
		})

		It("still saves after only the permissions failed to load", func() {
			client.SetDepartments(depts[:2])
			remote.listErr = errors.New("transient")
			Expect(client.Load(ctx)).NotTo(Succeed())
			Expect(client.LoadError()).NotTo(HaveOccurred())

			Expect(client.Toggle(1, 2)).To(BeTrue())
			Expect(client.Save(ctx)).To(Succeed())
			Expect(remote.saveCount()).To(Equal(1))
			Expect(remote.saved[0]).To(ConsistOf(permission.Pair{FromDeptID: 2, ToDeptID: 1}))
		})

		It("refuses a second save while the first is in flight", func() {
			remote.block = make(chan struct{})
			remote.started = make(chan struct{}, 1)
			done := make(chan error)
			go func() { done <- client.Save(ctx) }()
			<-remote.started

			Expect(client.Save(ctx)).To(MatchError(apperrors.ErrOperationInFlight))
			Expect(recorder.Last().Title).To(Equal("Please wait"))

			close(remote.block)
			Expect(<-done).To(Succeed())
			Expect(remote.saveCount()).To(Equal(1))
		})
	})

	Describe("SendAlert", func() {
		var full daterange.Range

		BeforeEach(func() {
			Expect(client.Refresh(ctx)).To(Succeed())
			from := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
			to := time.Date(2024, 4, 30, 23, 59, 59, 999_000_000, time.UTC)
			full = daterange.Range{From: &from, To: &to}
		})

		It("posts the current pairs with the period", func() {
			resp, err := client.SendAlert(ctx, full)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message).To(Equal("ok"))
			Expect(remote.alerts).To(Equal(1))
			Expect(remote.alertStart).To(Equal(*full.From))
			Expect(recorder.Last().Title).To(Equal("Mail Alert Sent"))
		})

		It("requires both dates without calling the backend", func() {
			_, err := client.SendAlert(ctx, daterange.Range{From: full.From})

			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeInvalidDateRange))
			Expect(remote.alerts).To(Equal(0))
			Expect(recorder.Last().Title).To(Equal("Validation Error"))
		})

		It("checks the in-flight flag before the dates", func() {
			remote.block = make(chan struct{})
			remote.started = make(chan struct{}, 1)
			done := make(chan error)
			go func() {
				_, err := client.SendAlert(ctx, full)
				done <- err
			}()
			<-remote.started

			_, err := client.SendAlert(ctx, daterange.Range{})
			Expect(err).To(MatchError(apperrors.ErrOperationInFlight))

			close(remote.block)
			Expect(<-done).To(Succeed())
		})

		It("notifies with the backend message on failure", func() {
			remote.alertErr = apperrors.NewExternalError("Missing allowed_pairs or date range for mail alert", apperrors.ErrCodeBackendRejected, 400)

			_, err := client.SendAlert(ctx, full)
			Expect(err).To(HaveOccurred())
			Expect(recorder.Last().Description).To(Equal("Missing allowed_pairs or date range for mail alert"))
		})
	})

	Describe("AllowAll and RevokeAll", func() {
		BeforeEach(func() {
			Expect(client.Refresh(ctx)).To(Succeed())
		})

		It("grants and revokes a whole row by department name", func() {
			Expect(client.AllowAll("production")).To(Succeed())
			Expect(client.Matrix().Allowed(3, 1)).To(BeTrue())
			Expect(client.Matrix().Allowed(3, 2)).To(BeTrue())
			Expect(recorder.Last().Description).To(Equal("All permissions granted for Production"))

			Expect(client.RevokeAll("Finance")).To(Succeed())
			Expect(client.Matrix().Allowed(1, 2)).To(BeFalse())
			Expect(recorder.Last().Description).To(Equal("All permissions revoked for Finance"))
		})

		It("reports an unknown department", func() {
			err := client.AllowAll("Legal")
			Expect(errors.Is(err, apperrors.ErrUnknownDepartment)).To(BeTrue())
			Expect(recorder.Last().Description).To(Equal("Selected department not found."))
		})
	})
})
