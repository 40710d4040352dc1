package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/evpower/recruit-backend/internal/config"
	"github.com/evpower/recruit-backend/internal/database"
	"github.com/evpower/recruit-backend/internal/logger"
	"github.com/evpower/recruit-backend/internal/repository"
	"github.com/evpower/recruit-backend/internal/service"
)

func main() {
	var force bool
	flag.BoolVar(&force, "force", false, "Replace a non-empty question bank")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	questionRepo := repository.NewAptitudeQuestionRepository(pool)
	positionService := service.NewPositionService(repository.NewJobPositionRepository(pool), rdb, log)
	questionService := service.NewQuestionService(questionRepo, rdb, log)

	fmt.Println("=== Seeding Positions and Aptitude Questions ===")

	if err := positionService.EnsureDefaults(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed positions")
	}
	fmt.Println("Positions ensured.")

	existing, err := questionRepo.Count(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to count questions")
	}
	if existing > 0 && !force {
		fmt.Printf("Question bank already holds %d questions, rerun with -force to replace it.\n", existing)
	} else {
		bank := service.DefaultQuestionBank()
		if err := questionService.ReplaceAll(ctx, bank); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed questions")
		}
		fmt.Printf("Seeded %d questions.\n", len(bank))
	}

	n, err := questionService.Warm(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to warm question cache")
	}
	fmt.Printf("Question cache holds %d questions.\n", n)
}
