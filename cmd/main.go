package main

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"

	"kpi-dashboard-backend/config"
	_ "kpi-dashboard-backend/docs" // This will be created by swag
	"kpi-dashboard-backend/internal/auth"
	"kpi-dashboard-backend/internal/connstore"
	"kpi-dashboard-backend/internal/controller"
	"kpi-dashboard-backend/internal/elasticsearch"
	"kpi-dashboard-backend/internal/kafka"
	"kpi-dashboard-backend/internal/postgres"
	"kpi-dashboard-backend/internal/scheduler"
	"kpi-dashboard-backend/internal/service"
	"kpi-dashboard-backend/internal/session"
)

// @title           Sector KPI Dashboard API
// @version         1.0
// @description     Backend for a sector KPI dashboard. Sector administrators register PostgreSQL connections, explore their schemas, and run natural language KPI queries that are translated to read-only SQL with chart recommendations.

// @host      localhost:8000
// @BasePath  /
// @schemes   http https

// @tag.name         auth
// @tag.description  Administrator authentication

// @tag.name         connections
// @tag.description  PostgreSQL connection registry and schema introspection

// @tag.name         query
// @tag.description  Natural language KPI queries

// @tag.name         history
// @tag.description  Query audit trail search

// @tag.name         health
// @tag.description  API health check operations

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter the token with the `Bearer: ` prefix, e.g. "Bearer abcde12345".

func main() {
	var wg sync.WaitGroup

	app := fx.New(
		// Core Dependencies
		fx.Provide(
			NewConfig,
		),
		// Infrastructure Dependencies
		fx.Provide(
			NewGinEngine,
			NewConnectionManager,
			auth.NewAccountRegistry,
			auth.NewTokenService,
			session.NewInMemoryStore,
			postgres.NewPoolManager,
			postgres.NewIntrospector,
			postgres.NewExecutor,
			kafka.NewKafkaAuditProducer,
			kafka.NewKafkaAuditConsumer,
			elasticsearch.NewElasticAuditStore,
			elasticsearch.NewElasticsearchAuditRepository,
			service.NewGeminiLLMService,
			service.NewConnectionService,
			service.NewQueryService,
			service.NewHistoryService,
			service.NewSchemaRefreshService,
			service.NewAuditConsumerService,
			controller.NewAuthController,
			controller.NewConnectionController,
			controller.NewQueryController,
			controller.NewHistoryController,
			controller.NewHealthController,
		),
		fx.Invoke(RegisterAPIRoutes,
			RegisterScheduler,
			func(lc fx.Lifecycle, consumerService service.AuditConsumerService) {
				startAuditConsumer(lc, &wg, consumerService)
			},
		),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}
	<-app.Done()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	log.Info().Msg("Shutting down application...")
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown due to error or timeout")
	}

	log.Info().Msg("Waiting for background goroutines to finish...")
	wg.Wait()
	log.Info().Msg("All background processes finished. Exiting.")
}

func NewConfig() (*config.Config, error) {
	return config.NewConfig()
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Add your frontend URLs
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Add swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func RegisterAPIRoutes(
	lifecycle fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	tokens auth.TokenService,
	authController *controller.AuthController,
	connectionController *controller.ConnectionController,
	queryController *controller.QueryController,
	historyController *controller.HistoryController,
	healthController *controller.HealthController,
) {
	controller.RegisterAuthRoutes(router, authController, tokens)
	controller.RegisterConnectionRoutes(router, connectionController, tokens)
	controller.RegisterQueryRoutes(router, queryController, tokens)
	controller.RegisterHistoryRoutes(router, historyController, tokens)
	controller.RegisterHealthRoutes(router, healthController)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Starting HTTP server on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("HTTP server ListenAndServe error")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Shutting down HTTP server...")
			return server.Shutdown(ctx)
		},
	})
}

// --- Factory Functions ---

func NewConnectionManager(cfg *config.Config) connstore.Manager {
	return connstore.NewManager(cfg.ConnStore.FilePath)
}

// --- Invoker Functions ---

func RegisterScheduler(lc fx.Lifecycle, cfg *config.Config, refreshSvc service.SchemaRefreshService) {
	scheduler.NewScheduler(lc, cfg, refreshSvc)
}

// startAuditConsumer runs the audit consumer loop in a goroutine managed by
// the fx lifecycle. A nil service means the audit pipeline is disabled.
func startAuditConsumer(lc fx.Lifecycle, wg *sync.WaitGroup, consumerService service.AuditConsumerService) {
	if consumerService == nil {
		log.Info().Msg("Audit consumer disabled, skipping")
		return
	}

	wg.Add(1)
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info().Msg("Starting audit consumer goroutine")
			go consumerService.Run(ctx, wg)
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			log.Info().Msg("Signaling audit consumer goroutine to stop...")
			cancel()
			return nil
		},
	})
}
