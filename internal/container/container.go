package container

import (
	"context"
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/musa-app/musa-api/internal/ai"
	"github.com/musa-app/musa-api/internal/config"
	"github.com/musa-app/musa-api/internal/connect"
	"github.com/musa-app/musa-api/internal/mailer"
	"github.com/musa-app/musa-api/internal/models"
	"github.com/musa-app/musa-api/internal/services"
)

// Container wires repositories, integrations and services together so main
// and the routes only deal with one value.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	MongoClient *mongo.Client
	Repo        *models.MongodbRepo
	Cloudinary  *cloudinary.Cloudinary
	Mailer      mailer.Mailer

	UserService *services.UserService
	SpotService *services.SpotService
	UGCService  *services.UGCService
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := connect.MongoDBConnect(cfg)
	if err != nil {
		return nil, err
	}
	repo := models.MongodbNewRepo(client, cfg.MongoDBName)
	if err := repo.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	cld, err := connect.CloudinaryCredentials(cfg)
	if err != nil {
		return nil, err
	}
	if cld == nil {
		logger.Warn("cloudinary not configured, image uploads pass through unchanged")
	}

	var mail mailer.Mailer
	if cfg.HasSMTP() {
		mail, err = mailer.NewSMTPMailer(cfg, logger)
		if err != nil {
			return nil, err
		}
	} else {
		mail = mailer.NewNoopMailer(logger)
	}

	var gen *ai.SpotGenerator
	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		gen = ai.NewSpotGenerator(gemini, logger)
		logger.Info("generator enabled", "model", gemini.Model())
	} else {
		logger.Warn("gemini not configured, search runs without generated candidates")
	}

	if cfg.HasGoogleOAuth() {
		gothic.Store = sessions.NewCookieStore([]byte(cfg.SessionSecret))
		goth.UseProviders(google.New(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleCallbackURL,
			"email", "profile",
		))
	}

	return &Container{
		Config:      cfg,
		Logger:      logger,
		MongoClient: client,
		Repo:        repo,
		Cloudinary:  cld,
		Mailer:      mail,
		UserService: services.NewUserService(repo, mail, cld, cfg.JWTSecret, logger),
		SpotService: services.NewSpotService(repo, gen, cld, logger),
		UGCService:  services.NewUGCService(repo, repo, cld, logger),
	}, nil
}

// Close releases held connections.
func (c *Container) Close() error {
	return connect.MongoDBDisconnect(c.MongoClient)
}
