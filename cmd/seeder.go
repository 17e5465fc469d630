package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/satyapradip/employee-task-management/internal/auth"
	"github.com/satyapradip/employee-task-management/internal/task"
	"github.com/satyapradip/employee-task-management/internal/user"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			if err := db.Exec("DELETE FROM tasks").Error; err != nil {
				log.Fatalf("failed to clear tasks: %v", err)
			}
			if err := db.Exec("DELETE FROM users").Error; err != nil {
				log.Fatalf("failed to clear users: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		hash, err := auth.HashPassword("password", cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		accounts := []user.User{
			{Email: "satya@mail.com", Name: "Satya Admin", Role: user.RoleAdmin},
			{Email: "pradip@mail.com", Name: "Pradip", Role: user.RoleEmployee},
			{Email: "rina@mail.com", Name: "Rina", Role: user.RoleEmployee},
		}

		ids := make(map[string]int64, len(accounts))
		for _, acct := range accounts {
			var existing user.User
			err := db.Where("email = ?", acct.Email).First(&existing).Error
			if err == nil {
				fmt.Printf("user %s already exists\n", acct.Email)
				ids[acct.Email] = existing.ID
				continue
			}

			acct.PasswordHash = hash
			acct.IsActive = true
			if err := db.Create(&acct).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", acct.Email, err)
			}
			ids[acct.Email] = acct.ID
			fmt.Printf("Seeded user: %s (%s)\n", acct.Email, acct.Role)
		}

		adminID := ids["satya@mail.com"]
		samples := []task.Task{
			{
				Title:       "Prepare onboarding docs",
				Description: "Collect the environment setup steps for new hires.",
				Category:    task.CategoryDocumentation,
				Status:      task.StatusNew,
				Priority:    task.PriorityMedium,
				AssignedTo:  ids["pradip@mail.com"],
				AssignedBy:  adminID,
				DueDate:     time.Now().AddDate(0, 0, 7),
			},
			{
				Title:       "Fix login page layout",
				Description: "The form overflows on small screens.",
				Category:    task.CategoryDevelopment,
				Status:      task.StatusActive,
				Priority:    task.PriorityHigh,
				AssignedTo:  ids["rina@mail.com"],
				AssignedBy:  adminID,
				DueDate:     time.Now().AddDate(0, 0, 2),
			},
		}

		for _, t := range samples {
			var count int64
			db.Model(&task.Task{}).Where("title = ?", t.Title).Count(&count)
			if count > 0 {
				fmt.Printf("task %q already exists\n", t.Title)
				continue
			}
			if err := db.Create(&t).Error; err != nil {
				log.Fatalf("failed to insert task %q: %v", t.Title, err)
			}
			fmt.Printf("Seeded task: %s\n", t.Title)
		}

		fmt.Println("Seeding complete")
	},
}
