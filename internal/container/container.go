package container

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/synqit/synqit-backend/config"
	"github.com/synqit/synqit-backend/internal/application"
	pginfra "github.com/synqit/synqit-backend/internal/infrastructure/postgres"
	"github.com/synqit/synqit-backend/internal/infrastructure/search"
	handlers "github.com/synqit/synqit-backend/internal/interface/http"
	"github.com/synqit/synqit-backend/internal/jobs"
	"github.com/synqit/synqit-backend/pkg/helpers"
	mailtpl "github.com/synqit/synqit-backend/pkg/mailer/templates"
)

// Container owns every constructed component of the API process.
// Optional backends (GCS, Elasticsearch, RabbitMQ) are nil when not configured.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Pool   *pgxpool.Pool
	Redis  *redis.Client
	GCS    *storage.Client
	ES     *elasticsearch.Client
	Rabbit *helpers.RabbitPublisher
	JWT    *helpers.JWTManager

	Health  *pginfra.HealthChecker
	Sweeper *jobs.SessionSweeper

	Auth          *application.AuthService
	Profiles      *application.ProfileService
	Projects      *application.ProjectService
	Partnerships  *application.PartnershipService
	Messages      *application.MessageService
	Notifications *application.NotificationService

	Handlers Handlers
}

type Handlers struct {
	Auth         *handlers.AuthHandler
	Profile      *handlers.ProfileHandler
	Project      *handlers.ProjectHandler
	Partnership  *handlers.PartnershipHandler
	Message      *handlers.MessageHandler
	Notification *handlers.NotificationHandler
	Health       *handlers.HealthHandler
}

// Build connects to Postgres (required) and every optional backend that is
// configured, then wires repositories, services and handlers.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
		DSN:         cfg.PostgresDSN(),
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
		MaxConnLife: cfg.DBMaxConnLife,
		Retries:     cfg.DBConnectRetries,
		RetryDelay:  cfg.DBConnectRetryDelay,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	c.Pool = pool
	c.Health = pginfra.NewHealthChecker(pool, cfg.DBHealthInterval, logger)

	c.Redis = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := c.Redis.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("redis unreachable; caching, rate limits and email codes degrade until it recovers")
	}

	if cfg.GCSBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("gcs disabled; image uploads will be rejected")
		} else {
			c.GCS = gcs
		}
	}

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch disabled; project search uses postgres")
	} else {
		c.ES = es
	}

	if cfg.RabbitMQURL != "" {
		rabbit, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unreachable; outgoing email is disabled")
		} else {
			c.Rabbit = rabbit
		}
	}

	c.JWT = helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	c.wire()
	return c, nil
}

func (c *Container) wire() {
	cfg, logger := c.Config, c.Logger

	users := pginfra.NewUserRepository(c.Pool)
	sessions := pginfra.NewSessionRepository(c.Pool)
	projects := pginfra.NewProjectRepository(c.Pool)
	partnerships := pginfra.NewPartnershipRepository(c.Pool)
	messages := pginfra.NewMessageRepository(c.Pool)
	notifications := pginfra.NewNotificationRepository(c.Pool)

	// Interfaces are only assigned from non-nil pointers.
	var cache application.Cache
	if c.Redis != nil {
		cache = helpers.NewRedisStore(c.Redis)
	}
	var images application.ImageStore
	if store := helpers.NewGCSImageStore(c.GCS, cfg.GCSBucket); store != nil {
		images = store
	}
	var index application.ProjectIndexer
	if idx := search.NewProjectIndex(c.ES, cfg.ESProjectsIndex, logger); idx != nil {
		index = idx
	}
	var mail application.JobPublisher
	if c.Rabbit != nil {
		mail = c.Rabbit
	}

	branding := mailtpl.Branding{AppName: cfg.AppName, CompanyName: cfg.CompanyName, SupportURL: cfg.SupportURL}

	var sink application.NotificationSink = application.NoopSink{}
	if cfg.MailSendEnabled {
		if mail == nil {
			logger.Warn("MAIL_SEND_ENABLED is set but rabbitmq is unavailable; notifications stay in-app")
		} else {
			sink = application.NewEmailSink(users, mail, branding, cfg.FrontendURL)
		}
	}

	c.Auth = application.NewAuthService(users, sessions, c.JWT, cache, mail, logger, application.AuthPolicy{
		MaxFailedAttempts: cfg.AuthMaxFailedAttempts,
		LockoutDuration:   cfg.AuthLockoutDuration,
		SessionCacheTTL:   application.DefaultAuthPolicy().SessionCacheTTL,
		VerifyCodeTTL:     application.DefaultAuthPolicy().VerifyCodeTTL,
		ResetTokenTTL:     application.DefaultAuthPolicy().ResetTokenTTL,
	})
	c.Auth.Branding = branding
	c.Auth.ResetPasswordURL = cfg.ResetPasswordURL

	c.Notifications = application.NewNotificationService(notifications, sink, logger)
	c.Profiles = application.NewProfileService(users, projects, c.Auth, images, index, logger)
	c.Projects = application.NewProjectService(projects, images, index, cache, logger)
	c.Partnerships = application.NewPartnershipService(partnerships, projects, c.Notifications, cache, logger, cfg.RecommendationCacheTTL)
	c.Messages = application.NewMessageService(messages, partnerships, c.Notifications, logger)

	c.Sweeper = jobs.NewSessionSweeper(c.Auth, cfg.SessionSweepInterval, logger)

	base := handlers.NewBase(logger, cfg.IsDevelopment())
	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure, cfg.CookieSameSite)
	c.Handlers = Handlers{
		Auth:         handlers.NewAuthHandler(base, c.Auth, c.Profiles, cookies),
		Profile:      handlers.NewProfileHandler(base, c.Profiles, cookies, cfg.UploadMaxBytes),
		Project:      handlers.NewProjectHandler(base, c.Projects, cfg.UploadMaxBytes),
		Partnership:  handlers.NewPartnershipHandler(base, c.Partnerships),
		Message:      handlers.NewMessageHandler(base, c.Messages),
		Notification: handlers.NewNotificationHandler(base, c.Notifications),
		Health:       handlers.NewHealthHandler(c.Health),
	}
}

// Start launches the background jobs.
func (c *Container) Start(ctx context.Context) {
	c.Health.Start(ctx)
	c.Sweeper.Start(ctx)
}

// Close stops background jobs and releases every connection.
func (c *Container) Close() {
	if c.Sweeper != nil {
		c.Sweeper.Stop()
	}
	if c.Health != nil {
		c.Health.Stop()
	}
	c.Rabbit.Close()
	if c.GCS != nil {
		_ = c.GCS.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}
