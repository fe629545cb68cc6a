package survey_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	surveyDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/survey"
	"github.com/frahmantamala/insight-pulse/internal/survey"
	surveyPostgres "github.com/frahmantamala/insight-pulse/internal/survey/postgres"
	"github.com/frahmantamala/insight-pulse/internal/transport"
	"github.com/frahmantamala/insight-pulse/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var _ = Describe("Survey Handler Integration", func() {
	var (
		db     *gorm.DB
		router chi.Router
		seeded *surveyDatamodel.Survey
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
		Expect(db.AutoMigrate(
			&surveyDatamodel.Survey{},
			&surveyDatamodel.Question{},
			&surveyDatamodel.Option{},
			&surveyDatamodel.Response{},
			&surveyDatamodel.Answer{},
		)).To(Succeed())

		repo := surveyPostgres.NewSurveyRepository(db)
		seeded = fixtureSurvey()
		seeded.ID = 0
		for i := range seeded.Questions {
			seeded.Questions[i].ID = 0
			seeded.Questions[i].SurveyID = 0
			for j := range seeded.Questions[i].Options {
				seeded.Questions[i].Options[j].ID = 0
				seeded.Questions[i].Options[j].QuestionID = 0
			}
		}
		Expect(repo.Create(seeded)).To(Succeed())

		lg := logger.Discard()
		handler := survey.NewHandler(&transport.BaseHandler{Logger: lg}, survey.NewService(repo, lg))
		router = chi.NewRouter()
		router.Get("/api/surveys/{id}", handler.GetSurvey)
		router.Post("/api/surveys/{id}/submit_response", handler.SubmitResponse)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
		return w
	}

	It("returns the survey with questions in order", func() {
		w := do(http.MethodGet, "/api/surveys/1", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp survey.SurveyResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Title).To(Equal("Quarterly collaboration"))
		Expect(resp.Questions).To(HaveLen(3))
		Expect(resp.Questions[0].Type).To(Equal("rating"))
		Expect(resp.Questions[1].Options).To(HaveLen(2))
	})

	It("answers 404 for a missing survey", func() {
		w := do(http.MethodGet, "/api/surveys/42", "")

		Expect(w.Code).To(Equal(http.StatusNotFound))
		var resp map[string]string
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp["detail"]).To(Equal("Survey not found"))
	})

	It("stores a submitted response and its answers", func() {
		ratingID := seeded.Questions[1].ID
		body := `{"user_id": 3, "answers": [{"id": ` + jsonInt(ratingID) + `, "rating": 5}, {"id": 999, "remarks": "skip"}], "suggestion": "thanks"}`

		w := do(http.MethodPost, "/api/surveys/1/submit_response", body)

		Expect(w.Code).To(Equal(http.StatusCreated))
		var result survey.SubmitResult
		Expect(json.NewDecoder(w.Body).Decode(&result)).To(Succeed())
		Expect(result.ResponseID).NotTo(BeZero())

		var answers []surveyDatamodel.Answer
		Expect(db.Where("response_id = ?", result.ResponseID).Find(&answers).Error).To(Succeed())
		Expect(answers).To(HaveLen(1))
		Expect(*answers[0].Rating).To(Equal(5))
	})

	It("answers 400 with a detail when the user id is missing", func() {
		w := do(http.MethodPost, "/api/surveys/1/submit_response", `{"answers": []}`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		var resp map[string]string
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp["detail"]).To(Equal("User ID is required for submission"))
	})

	It("answers 404 when submitting to a missing survey", func() {
		w := do(http.MethodPost, "/api/surveys/42/submit_response", `{"user_id": 3}`)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})
})

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
