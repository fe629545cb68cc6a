package cmd

import (
	"fmt"
	"log"

	authPostgres "github.com/frahmantamala/insight-pulse/internal/auth/postgres"
	departmentDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/department"
	permissionDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/permission"
	surveyDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/survey"
	userDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/user"
	departmentPostgres "github.com/frahmantamala/insight-pulse/internal/department/postgres"
	surveyPostgres "github.com/frahmantamala/insight-pulse/internal/survey/postgres"
	"github.com/frahmantamala/insight-pulse/internal/user"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		if err := cfg.Database.RequireSource(); err != nil {
			log.Fatal(err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			if err := clearSeedData(db); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		if err := seed(db, cfg.Security.BCryptCost); err != nil {
			log.Fatal(err)
		}
	},
}

var seedDepartments = []string{"HR", "Finance", "Production", "Procurement", "Marketing", "QA"}

func seed(db *gorm.DB, cost int) error {
	deptRepo := departmentPostgres.NewDepartmentRepository(db)
	for _, name := range seedDepartments {
		existing, err := deptRepo.GetByName(name)
		if err != nil {
			return fmt.Errorf("failed to look up department %s: %w", name, err)
		}
		if existing != nil {
			continue
		}
		if err := deptRepo.Create(&departmentDatamodel.Department{Name: name}); err != nil {
			return fmt.Errorf("failed to insert department %s: %w", name, err)
		}
		fmt.Println("Seeded department:", name)
	}

	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	accounts := []userDatamodel.User{
		{Username: "admin", Name: "Admin", Email: "admin@mail.com", Department: "HR", Role: user.RoleAdmin},
		{Username: "fadhil", Name: "Fadhil", Email: "fadhil@mail.com", Department: "Finance", Role: user.RoleUser},
		{Username: "padil", Name: "Padil", Email: "padil@mail.com", Department: "Production", Role: user.RoleUser},
	}
	userRepo := authPostgres.NewRepository(db)
	for i := range accounts {
		var count int64
		if err := db.Model(&userDatamodel.User{}).Where("username = ?", accounts[i].Username).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to look up user %s: %w", accounts[i].Username, err)
		}
		if count > 0 {
			fmt.Println("user already exists:", accounts[i].Username)
			continue
		}
		accounts[i].HashedPassword = string(hash)
		if err := userRepo.Create(&accounts[i]); err != nil {
			return fmt.Errorf("failed to insert user %s: %w", accounts[i].Username, err)
		}
		fmt.Println("Seeded user:", accounts[i].Username)
	}

	var surveys int64
	if err := db.Model(&surveyDatamodel.Survey{}).Count(&surveys).Error; err != nil {
		return fmt.Errorf("failed to count surveys: %w", err)
	}
	if surveys > 0 {
		return nil
	}
	s := &surveyDatamodel.Survey{
		Title:       "Inter-department feedback",
		Description: "How well did the other department support yours this period?",
		Questions: []surveyDatamodel.Question{
			{Text: "How responsive was the department to your requests?", Type: "rating", Order: 1},
			{Text: "Which channel worked best?", Type: "multiple_choice", Order: 2, Options: []surveyDatamodel.Option{
				{Text: "Email", Value: "email"},
				{Text: "Chat", Value: "chat"},
				{Text: "Meetings", Value: "meetings"},
			}},
			{Text: "What should they improve?", Type: "text", Order: 3},
		},
	}
	if err := surveyPostgres.NewSurveyRepository(db).Create(s); err != nil {
		return fmt.Errorf("failed to insert survey: %w", err)
	}
	fmt.Println("Seeded survey:", s.Title)
	return nil
}

// clearSeedData removes rows in dependency order.
func clearSeedData(db *gorm.DB) error {
	models := []interface{}{
		&surveyDatamodel.Answer{},
		&surveyDatamodel.Response{},
		&surveyDatamodel.Option{},
		&surveyDatamodel.Question{},
		&surveyDatamodel.Survey{},
		&permissionDatamodel.Permission{},
		&userDatamodel.User{},
		&departmentDatamodel.Department{},
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, m := range models {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

