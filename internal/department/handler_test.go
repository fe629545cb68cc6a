package department_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	departmentDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/department"
	"github.com/frahmantamala/insight-pulse/internal/department"
	departmentPostgres "github.com/frahmantamala/insight-pulse/internal/department/postgres"
	"github.com/frahmantamala/insight-pulse/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Department Handler Integration", func() {
	var (
		db      *gorm.DB
		handler *department.Handler
	)

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&departmentDatamodel.Department{})).To(Succeed())

		repo := departmentPostgres.NewDepartmentRepository(db)
		service := department.NewService(repo, slogger)
		handler = department.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		for _, name := range []string{"Production", "Finance", "Marketing"} {
			Expect(repo.Create(&departmentDatamodel.Department{Name: name})).To(Succeed())
		}
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	It("lists departments ordered by name", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/departments", nil)
		w := httptest.NewRecorder()

		handler.GetDepartments(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var resp []department.DepartmentResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp).To(HaveLen(3))
		Expect(resp[0].Name).To(Equal("Finance"))
		Expect(resp[1].Name).To(Equal("Marketing"))
		Expect(resp[2].Name).To(Equal("Production"))
	})

	It("creates a department and answers 201", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/departments", strings.NewReader(`{"name":"QA"}`))
		w := httptest.NewRecorder()

		handler.CreateDepartment(w, req)

		Expect(w.Code).To(Equal(http.StatusCreated))
		var resp department.DepartmentResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.ID).NotTo(BeZero())
		Expect(resp.Name).To(Equal("QA"))
	})

	It("answers 409 for a duplicate name", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/departments", strings.NewReader(`{"name":"Finance"}`))
		w := httptest.NewRecorder()

		handler.CreateDepartment(w, req)

		Expect(w.Code).To(Equal(http.StatusConflict))
		var resp map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp["message"]).To(ContainSubstring("already exists"))
	})

	It("answers 400 when the name is missing", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/departments", strings.NewReader(`{}`))
		w := httptest.NewRecorder()

		handler.CreateDepartment(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
