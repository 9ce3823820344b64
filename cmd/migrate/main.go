package main

import (
	"context"
	"flag"
	"log"

	"support-duty-bot/internal/config"
	pg "support-duty-bot/internal/infra/db/postgres"
)

func main() {
	envFile := flag.String("env", ".env", "path to .env file (optional)")
	dir := flag.String("dir", "migrations", "path to migration scripts")
	down := flag.Bool("down", false, "roll back the most recent migration")
	flag.Parse()

	cfg, err := config.LoadConfig(*envFile, false)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 2)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if *down {
		if err := pg.Rollback(ctx, pool, *dir); err != nil {
			log.Fatalf("rollback: %v", err)
		}
		log.Println("rolled back")
		return
	}
	if err := pg.Migrate(ctx, pool, *dir); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("migrations applied")
}
