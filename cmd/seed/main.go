package main

import (
	"context"
	"log"
	"time"

	"billing-engine-be/internal/config"
	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/pkg/clock"
	"billing-engine-be/internal/pkg/money"
	"billing-engine-be/internal/repository/unitofwork"
	"billing-engine-be/internal/service"
	"billing-engine-be/pkg/database"

	"github.com/google/uuid"
)

// demoUserId is stable so re-running the seeder never duplicates demo data.
var demoUserId = uuid.MustParse("00000000-0000-4000-8000-000000000001")

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(db)

	log.Println("Seeding plan catalogue...")
	if err := seedPlans(ctx, uowFactory, cfg.Billing.DefaultCurrency); err != nil {
		log.Fatalf("Error: Failed to seed plans: %v", err)
	}

	log.Println("Seeding demo user...")
	created, err := seedDemoUser(ctx, uowFactory)
	if err != nil {
		log.Fatalf("Error: Failed to seed demo user: %v", err)
	}
	if !created {
		log.Println("Demo user already exists, skipping invoices")
		return
	}

	invoices := service.NewInvoiceService(uowFactory, clock.System{}, cfg.Billing.DefaultCurrency)
	today := clock.Today(clock.System{})
	for _, in := range []struct {
		amount      money.Cents
		description string
		dueDate     time.Time
	}{
		{2990, "Monthly plan - previous period", today.AddDate(0, 0, -5)},
		{2990, "Monthly plan - current period", today.AddDate(0, 0, 3)},
	} {
		invoice, err := invoices.Issue(ctx, service.IssueInvoiceInput{
			UserId:        demoUserId,
			AmountInCents: in.amount,
			Description:   in.description,
			DueDate:       in.dueDate,
		})
		if err != nil {
			log.Fatalf("Error: Failed to issue invoice: %v", err)
		}
		log.Printf("Issued invoice %s due %s", invoice.InvoiceNumber, invoice.DueDate.Format("2006-01-02"))
	}

	log.Println("Success: Seeding completed.")
}

func seedPlans(ctx context.Context, uowFactory unitofwork.RepositoryFactory, currency string) error {
	plans := []*entity.Plan{
		{Name: "Monthly", Slug: "monthly", Description: "Billed every month", PriceInCents: 2990, BillingCycle: entity.BillingCycleMonthly, Features: []string{"unlimited_projects", "email_support"}},
		{Name: "Annual", Slug: "annual", Description: "Two months free", PriceInCents: 29900, BillingCycle: entity.BillingCycleAnnual, Features: []string{"unlimited_projects", "priority_support"}},
		{Name: "Monthly with trial", Slug: "monthly-trial", Description: "14 days free, then monthly", PriceInCents: 2990, BillingCycle: entity.BillingCycleMonthly, TrialDays: 14, Features: []string{"unlimited_projects"}},
	}

	uow := uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	now := time.Now()
	for _, p := range plans {
		existing, err := uow.PlanRepository().FindBySlug(ctx, p.Slug)
		if err != nil {
			return err
		}
		if existing != nil {
			log.Printf("Plan '%s' already exists, skipping...", p.Slug)
			continue
		}

		p.Id = uuid.New()
		p.Currency = currency
		p.IsActive = true
		p.CreatedAt = now
		p.UpdatedAt = now
		if err := uow.PlanRepository().Create(ctx, p); err != nil {
			return err
		}
		log.Printf("Created plan '%s'", p.Slug)
	}

	return uow.Commit()
}

func seedDemoUser(ctx context.Context, uowFactory unitofwork.RepositoryFactory) (bool, error) {
	repo := uowFactory.NewUnitOfWork(ctx).UserRepository()
	existing, err := repo.FindByID(ctx, demoUserId)
	if err != nil || existing != nil {
		return false, err
	}

	now := time.Now()
	return true, repo.Create(ctx, &entity.User{
		Id:        demoUserId,
		Email:     "demo@billing.local",
		FullName:  "Demo User",
		CreatedAt: now,
		UpdatedAt: now,
	})
}
