package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/VictorLi621/5620-Marker/config"
	"github.com/VictorLi621/5620-Marker/database"
	_ "github.com/VictorLi621/5620-Marker/docs" // Swagger docs
	studentctrl "github.com/VictorLi621/5620-Marker/internal/controller/student"
	teacherctrl "github.com/VictorLi621/5620-Marker/internal/controller/teacher"
	"github.com/VictorLi621/5620-Marker/internal/kafka"
	"github.com/VictorLi621/5620-Marker/internal/logger"
	"github.com/VictorLi621/5620-Marker/internal/model"
	"github.com/VictorLi621/5620-Marker/internal/repository"
	"github.com/VictorLi621/5620-Marker/internal/service"
)

// @title Intelligent Marker API
// @version 1.0
// @description Submission processing and grading workflow: upload, OCR, anonymization, AI scoring, teacher review, publication and appeals.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core application components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		// Repositories layer
		fx.Provide(
			repository.NewSubmissionRepository,
			repository.NewGradeRepository,
			repository.NewAppealRepository,
			repository.NewAssignmentRepository,
			repository.NewEnrollmentRepository,
			repository.NewSnapshotRepository,
			repository.NewNotificationRepository,
			repository.NewAuditLogRepository,
		),

		// Messaging and storage
		fx.Provide(
			NewKafkaProducer,
			func(p *kafka.Producer) service.EventProducer { return p },
			service.NewStorageService,
		),

		// Services layer
		fx.Provide(
			service.NewAuditService,
			service.NewNotificationService,
			service.NewNotificationWorker,
			service.NewRosterService,
			service.NewAssignmentService,
			service.NewAnonymizationService,
			service.NewGeminiExtractionService,
			service.NewGeminiScoringService,
			NewStageRunner,
			service.NewGradeService,
			service.NewWorkflowService,
			service.NewAppealService,
			service.NewAnalyticsService,
			service.NewSubmissionOrchestrator,
		),

		// API controllers layer
		fx.Provide(
			studentctrl.NewSubmissionController,
			teacherctrl.NewAssignmentController,
			teacherctrl.NewGradeController,
			teacherctrl.NewAnalyticsController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
		fx.Invoke(StartNotificationWorker),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func NewKafkaProducer(lc fx.Lifecycle, cfg *config.Config) (*kafka.Producer, error) {
	producer, err := kafka.NewProducer(kafka.Config{Brokers: cfg.Kafka.Brokers})
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return producer.Close()
		},
	})
	return producer, nil
}

func NewStageRunner(
	extractor service.ExtractionService,
	anonymizer service.AnonymizerService,
	scorer service.ScoringService,
	cfg *config.Config,
) *service.StageRunner {
	return service.NewStageRunner(extractor, anonymizer, scorer, cfg.StageTimeout)
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	submissionCtrl *studentctrl.SubmissionController,
	assignmentCtrl *teacherctrl.AssignmentController,
	gradeCtrl *teacherctrl.GradeController,
	analyticsCtrl *teacherctrl.AnalyticsController,
) {
	api := router.Group("/api/v1")
	submissionCtrl.RegisterRoutes(api)
	assignmentCtrl.RegisterRoutes(api)
	gradeCtrl.RegisterRoutes(api)
	analyticsCtrl.RegisterRoutes(api)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Intelligent Marker API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Assignment{},
		&model.Enrollment{},
		&model.Submission{},
		&model.Grade{},
		&model.GradeSnapshot{},
		&model.Appeal{},
		&model.NotificationAttempt{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}

	// One pending appeal per submission, enforced at the database level.
	err = db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_appeals_pending ON appeals (submission_id) WHERE status = 'PENDING'",
	).Error
	if err != nil {
		log.Error().Err(err).Msg("Failed to create pending-appeal index")
		return err
	}

	log.Info().Msg("Database migration completed successfully.")
	return nil
}

func StartNotificationWorker(lc fx.Lifecycle, worker *service.NotificationWorker) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			worker.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			worker.Stop()
			return nil
		},
	})
}
