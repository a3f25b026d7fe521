package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"clinic-credit-service/internal/config"
	pg "clinic-credit-service/internal/infra/db/postgres"
	"clinic-credit-service/internal/infra/logging"
	"clinic-credit-service/internal/usecase"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool := pg.MustConnectPostgres(cfg.Database.URL)
	defer pool.Close()

	planRepo := pg.NewPlanRepo(pool)
	clinicRepo := pg.NewClinicRepo(pool)
	planUC := usecase.NewPlanUseCase(planRepo, logger)
	clinicUC := usecase.NewClinicUseCase(clinicRepo, logger)

	// If plans already exist, do nothing.
	plans, err := planUC.ListActive(ctx)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		for _, p := range plans {
			fmt.Printf("  - %s (credits=%d, price=%s, validity=%dd)\n", p.Name, p.Credits, p.Price, p.ValidityDays)
		}
		return
	}

	seed := []struct {
		Name     string
		Credits  int64
		Price    string
		Validity int
	}{
		{"Essencial 10", 10, "499.00", 365},
		{"Familia 30", 30, "1290.00", 365},
		{"Anual 60", 60, "2190.00", 365},
	}
	for _, s := range seed {
		p, err := planUC.Create(ctx, s.Name, s.Credits, decimal.RequireFromString(s.Price), s.Validity)
		if err != nil {
			log.Fatalf("create plan %q: %v", s.Name, err)
		}
		fmt.Printf("seeded plan: %s (id=%s, credits=%d, price=%s)\n", p.Name, p.ID, p.Credits, p.Price)
	}

	clinics := []struct {
		Name, City, Address string
	}{
		{"Clinica Central", "Sao Paulo", "Av. Paulista 1000"},
		{"Sorriso Norte", "Campinas", "R. Barao de Jaguara 250"},
	}
	for _, c := range clinics {
		cl, err := clinicUC.Register(ctx, c.Name, c.City, c.Address)
		if err != nil {
			log.Fatalf("register clinic %q: %v", c.Name, err)
		}
		fmt.Printf("seeded clinic: %s (id=%s, slug=%s)\n", cl.Name, cl.ID, cl.Slug)
	}

	fmt.Println("Seeding complete.")
}
