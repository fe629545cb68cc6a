package auth_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/insight-pulse/internal/auth"
	authPostgres "github.com/frahmantamala/insight-pulse/internal/auth/postgres"
	userDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/user"
	"github.com/frahmantamala/insight-pulse/internal/transport"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = ginkgo.Describe("Login Handler Integration", func() {
	var (
		db      *gorm.DB
		handler *auth.Handler
	)

	ginkgo.BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		sqlDB, err := db.DB()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		gomega.Expect(db.AutoMigrate(&userDatamodel.User{})).To(gomega.Succeed())

		repo := authPostgres.NewRepository(db)
		hash, err := auth.HashPassword("admin123", bcrypt.MinCost)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(repo.Create(&userDatamodel.User{
			Username:       "admin",
			Name:           "Admin User",
			Email:          "admin@example.com",
			Department:     "HR",
			HashedPassword: hash,
			Role:           "Admin",
		})).To(gomega.Succeed())

		service := auth.NewService(repo, bcrypt.MinCost, slogger)
		handler = auth.NewHandler(&transport.BaseHandler{Logger: slogger}, service)
	})

	ginkgo.AfterEach(func() {
		sqlDB, err := db.DB()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(sqlDB.Close()).To(gomega.Succeed())
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.Login(w, req)
		return w
	}

	ginkgo.It("returns the user record on success", func() {
		w := post(`{"username":"admin","password":"admin123"}`)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		var resp auth.LoginResponse
		gomega.Expect(json.NewDecoder(w.Body).Decode(&resp)).To(gomega.Succeed())
		gomega.Expect(resp.ID).NotTo(gomega.BeZero())
		gomega.Expect(resp.Username).To(gomega.Equal("admin"))
		gomega.Expect(resp.Email).To(gomega.Equal("admin@example.com"))
		gomega.Expect(resp.Role).To(gomega.Equal("admin"))
	})

	ginkgo.It("answers 401 with a detail for a wrong password", func() {
		w := post(`{"username":"admin","password":"nope"}`)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		var resp map[string]string
		gomega.Expect(json.NewDecoder(w.Body).Decode(&resp)).To(gomega.Succeed())
		gomega.Expect(resp["detail"]).To(gomega.Equal("Invalid username or password"))
	})

	ginkgo.It("answers 401 for an unknown user", func() {
		w := post(`{"username":"ghost","password":"admin123"}`)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("answers 400 when a field is missing", func() {
		w := post(`{"username":"admin"}`)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusBadRequest))
		var resp map[string]string
		gomega.Expect(json.NewDecoder(w.Body).Decode(&resp)).To(gomega.Succeed())
		gomega.Expect(resp["detail"]).To(gomega.Equal("Missing username or password"))
	})

	ginkgo.It("answers 400 for a malformed body", func() {
		w := post(`{`)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusBadRequest))
	})
})
