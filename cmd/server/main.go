package main // Entry point package

import (
	"log"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/mkravets/projecthub/internal/audit"
	"github.com/mkravets/projecthub/internal/config"
	"github.com/mkravets/projecthub/internal/database"
	"github.com/mkravets/projecthub/internal/handler"
	"github.com/mkravets/projecthub/internal/mailer"
	appmw "github.com/mkravets/projecthub/internal/middleware"
	"github.com/mkravets/projecthub/internal/queue"
	"github.com/mkravets/projecthub/internal/repository"
	"github.com/mkravets/projecthub/internal/router"
)

func main() {
	cfg := config.Load()

	if cfg.AutoMigrate {
		if err := database.Migrate(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: with no client both the rate limiter and the
	// response cache become pass-throughs.
	rdb := config.NewRedisClient()
	limit := appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := appmw.NewRedisCache(config.LoadCacheConfig(), rdb)

	users := repository.NewUserRepo(db)
	projects := repository.NewProjectRepo(db)
	tasks := repository.NewTaskRepo(db)
	comments := repository.NewCommentRepo(db)
	activity := repository.NewActivityRepo(db)
	tokens := repository.NewTokenRepo(db)
	resets := repository.NewResetTokenRepo(db)

	recorder := audit.NewRecorder(activity, projects)
	mail := mailer.New(cfg.SMTP)

	// The notification consumer drains the email queue in the
	// background, reconnecting on broker failure.
	go queue.StartNotificationConsumer(cfg.AMQPURL, mail)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e)
	router.RegisterAuth(e,
		handler.NewAuthHandler(cfg, users, tokens),
		handler.NewPasswordHandler(cfg, users, resets, tokens, mail),
		cfg.JWTSecret, limit)
	router.RegisterProjects(e,
		handler.NewProjectHandler(projects, users, recorder, cfg.AMQPURL),
		handler.NewTaskHandler(tasks, projects, users, recorder, cfg.AMQPURL),
		handler.NewCommentHandler(comments, tasks, projects, recorder),
		handler.NewActivityHandler(activity, projects),
		cfg.JWTSecret, cache)
	router.RegisterAdmin(e,
		handler.NewAdminHandler(users, tokens),
		handler.NewActivityHandler(activity, projects),
		cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
