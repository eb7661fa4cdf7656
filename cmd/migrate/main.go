package main

import (
	"log"

	"billing-engine-be/internal/config"
	"billing-engine-be/internal/model"
	"billing-engine-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up extensions...")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Printf("Warn: Failed to create pgcrypto extension: %v. Continuing...", err)
	}

	log.Println("Step 2: Running AutoMigrate...")
	models := []interface{}{
		&model.User{},
		&model.Plan{},
		&model.Subscription{},
		&model.Invoice{},
		&model.PaymentMethod{},
		&model.Payment{},
		&model.Dispute{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// Partial unique indexes back the single-row invariants the services
	// also enforce under lock.
	log.Println("Step 3: Creating partial unique indexes...")
	postMigrationSQL := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_subscriptions_active_user
		 ON subscriptions (user_id)
		 WHERE status IN ('trialing', 'active') AND deleted_at IS NULL;`,

		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_payment_methods_default_user
		 ON payment_methods (user_id)
		 WHERE is_default AND deleted_at IS NULL;`,

		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_disputes_active_payment
		 ON disputes (payment_id)
		 WHERE status IN ('open', 'under_review');`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Fatalf("Error: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("Success: Database migration completed.")
}
