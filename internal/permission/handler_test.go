package permission_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	departmentDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/department"
	permissionDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/permission"
	"github.com/frahmantamala/insight-pulse/internal/core/events"
	"github.com/frahmantamala/insight-pulse/internal/department"
	departmentPostgres "github.com/frahmantamala/insight-pulse/internal/department/postgres"
	"github.com/frahmantamala/insight-pulse/internal/permission"
	permissionPostgres "github.com/frahmantamala/insight-pulse/internal/permission/postgres"
	"github.com/frahmantamala/insight-pulse/internal/transport"
	"github.com/frahmantamala/insight-pulse/internal/user"
	"github.com/frahmantamala/insight-pulse/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var _ = Describe("Permission Handler Integration", func() {
	var (
		db      *gorm.DB
		bus     *events.EventBus
		handler *permission.Handler
		deptIDs map[string]int64
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&departmentDatamodel.Department{}, &permissionDatamodel.Permission{})).To(Succeed())

		deptRepo := departmentPostgres.NewDepartmentRepository(db)
		deptIDs = map[string]int64{}
		for _, name := range []string{"Finance", "HR", "Production"} {
			row := &departmentDatamodel.Department{Name: name}
			Expect(deptRepo.Create(row)).To(Succeed())
			deptIDs[name] = row.ID
		}

		lg := logger.Discard()
		bus = events.NewEventBus(lg)
		users := &stubUsers{users: []user.User{{ID: 1, Username: "sari", Email: "sari@example.com", Department: "Finance"}}}
		service := permission.NewService(
			permissionPostgres.NewPermissionRepository(db),
			department.NewService(deptRepo, lg),
			users, bus, lg,
		)
		handler = permission.NewHandler(&transport.BaseHandler{Logger: lg}, service)
	})

	AfterEach(func() {
		bus.Wait()
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	list := func() []permission.Pair {
		w := httptest.NewRecorder()
		handler.GetPermissions(w, httptest.NewRequest(http.MethodGet, "/api/permissions", nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		var pairs []permission.Pair
		Expect(json.NewDecoder(w.Body).Decode(&pairs)).To(Succeed())
		return pairs
	}

	save := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		handler.SavePermissions(w, httptest.NewRequest(http.MethodPost, "/api/permissions/save", strings.NewReader(body)))
		return w
	}

	It("starts empty", func() {
		Expect(list()).To(BeEmpty())
	})

	It("replaces the stored pairs on every save", func() {
		f, h, p := deptIDs["Finance"], deptIDs["HR"], deptIDs["Production"]

		w := save(`{"allowed_pairs":[` + pairJSON(f, h) + `,` + pairJSON(f, p) + `]}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(list()).To(HaveLen(2))

		w = save(`{"allowed_pairs":[` + pairJSON(p, h) + `]}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		var resp permission.MessageResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Message).To(Equal("Permissions saved successfully"))
		Expect(list()).To(Equal([]permission.Pair{{FromDeptID: p, ToDeptID: h}}))
	})

	It("writes nothing when a pair is malformed", func() {
		f, h := deptIDs["Finance"], deptIDs["HR"]
		Expect(save(`{"allowed_pairs":[` + pairJSON(f, h) + `]}`).Code).To(Equal(http.StatusOK))

		w := save(`{"allowed_pairs":[{"from_dept_id":1}]}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		var resp map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp["message"]).To(ContainSubstring("Invalid pair format"))
		Expect(list()).To(HaveLen(1))
	})

	It("answers 400 when allowed_pairs is not a list", func() {
		Expect(save(`{"allowed_pairs":"all"}`).Code).To(Equal(http.StatusBadRequest))
	})

	It("runs a mail alert for the affected users", func() {
		f, h := deptIDs["Finance"], deptIDs["HR"]
		body := `{"allowed_pairs":[` + pairJSON(f, h) + `],"start_date":"2024-04-01T00:00:00.000Z","end_date":"2024-04-30T23:59:59.999Z"}`
		w := httptest.NewRecorder()
		handler.MailAlert(w, httptest.NewRequest(http.MethodPost, "/api/permissions/mail-alert", strings.NewReader(body)))

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp permission.MailAlertResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.AlertDetails).To(HaveLen(1))
		Expect(resp.AlertDetails[0]).To(ContainSubstring("Can now survey: HR"))
	})

	It("answers 400 for a mail alert without dates", func() {
		w := httptest.NewRecorder()
		handler.MailAlert(w, httptest.NewRequest(http.MethodPost, "/api/permissions/mail-alert", strings.NewReader(`{"allowed_pairs":[]}`)))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})

func pairJSON(from, to int64) string {
	b, _ := json.Marshal(permission.Pair{FromDeptID: from, ToDeptID: to})
	return string(b)
}
