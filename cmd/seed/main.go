package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/synqit/synqit-backend/config"
	"github.com/synqit/synqit-backend/internal/application"
	"github.com/synqit/synqit-backend/internal/domain/entity"
	pginfra "github.com/synqit/synqit-backend/internal/infrastructure/postgres"
	"github.com/synqit/synqit-backend/pkg/apperror"
	"github.com/synqit/synqit-backend/pkg/helpers"
)

const demoPassword = "Synqit!2024"

type demo struct {
	email     string
	firstName string
	lastName  string
	userType  entity.UserType
	project   string
	about     string
	kind      entity.ProjectType
	chains    []entity.Blockchain
	tags      []string
}

var demos = []demo{
	{"alice@synqit.dev", "Alice", "Moreau", entity.UserTypeStartup, "Tidepool", "Cross-chain liquidity router for long-tail assets.", entity.ProjectTypeDeFi, []entity.Blockchain{"ETHEREUM", "ARBITRUM"}, []string{"dex", "liquidity"}},
	{"bob@synqit.dev", "Bob", "Okafor", entity.UserTypeStartup, "Keystone Wallet", "Self-custody mobile wallet with social recovery.", entity.ProjectTypeWallet, []entity.Blockchain{"ETHEREUM", "POLYGON"}, []string{"wallet", "mobile"}},
	{"carol@synqit.dev", "Carol", "Lindqvist", entity.UserTypeEcosystemPlayer, "Questline", "On-chain quest engine for web3 games.", entity.ProjectTypeGaming, []entity.Blockchain{"SOLANA"}, []string{"gaming", "quests"}},
	{"dan@synqit.dev", "Dan", "Reyes", entity.UserTypeInvestor, "Northbeam Ventures", "Early-stage fund backing infrastructure teams.", entity.ProjectTypeInfrastructure, []entity.Blockchain{"ETHEREUM", "BASE"}, []string{"fund", "infra"}},
}

// Seeds demo users with one project each through the application services,
// so every business rule applies. Re-running updates the projects in place.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
		DSN:        cfg.PostgresDSN(),
		MaxConns:   2,
		Retries:    cfg.DBConnectRetries,
		RetryDelay: cfg.DBConnectRetryDelay,
	}, logger)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	jwt := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	auth := application.NewAuthService(users, pginfra.NewSessionRepository(pool), jwt, nil, nil, logger, application.DefaultAuthPolicy())
	projects := application.NewProjectService(pginfra.NewProjectRepository(pool), nil, nil, nil, logger)

	for _, d := range demos {
		id, err := ensureUser(ctx, auth, users, d)
		if err != nil {
			log.Fatalf("seed user %s: %v", d.email, err)
		}
		prefs := make([]entity.BlockchainPreference, 0, len(d.chains))
		for i, c := range d.chains {
			prefs = append(prefs, entity.BlockchainPreference{Blockchain: c, IsPrimary: i == 0})
		}
		partners := true
		p, created, err := projects.UpsertProject(ctx, id, application.ProjectInput{
			Name:                 &d.project,
			Description:          &d.about,
			ProjectType:          &d.kind,
			IsLookingForPartners: &partners,
			Blockchains:          prefs,
			Tags:                 d.tags,
		})
		if err != nil {
			log.Fatalf("seed project %s: %v", d.project, err)
		}
		logger.WithFields(logrus.Fields{"email": d.email, "project_id": p.ID, "created": created}).Info("seeded")
	}
	logger.Infof("demo users share the password %q", demoPassword)
}

func ensureUser(ctx context.Context, auth *application.AuthService, users *pginfra.UserRepository, d demo) (string, error) {
	res, err := auth.Register(ctx, application.RegisterInput{
		Email:     d.email,
		Password:  demoPassword,
		FirstName: d.firstName,
		LastName:  d.lastName,
		UserType:  d.userType,
	}, application.ClientInfo{UserAgent: "seed"})
	if err == nil {
		return res.User.ID, nil
	}
	if apperror.StatusOf(err) != http.StatusConflict {
		return "", err
	}
	u, err := users.GetByEmail(ctx, d.email)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}
