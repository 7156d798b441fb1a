package handlers

import (
	"github.com/jmoiron/sqlx"

	"avtosotuv/internal/auth"
	"avtosotuv/internal/config"
	"avtosotuv/internal/events"
	"avtosotuv/internal/repos"
	"avtosotuv/internal/services"
)

type Deps struct {
	Auth      *services.AuthService
	Listings  *services.ListingService
	Admin     *services.AdminService
	Directory *services.DirectoryService
	Uploads   *services.UploadService

	// UploadDir is served under /uploads when images live on local disk.
	UploadDir    string
	FrontendURL  string
	RateLimitMax int
}

func NewDeps(db *sqlx.DB, cfg config.Config, store services.ImageStore, pub events.Publisher) *Deps {
	userRepo := repos.NewUserRepo(db)

	gate := services.Gate{MaxActive: cfg.MaxActiveListings, Cooldown: cfg.PostingCooldown}
	listings := services.NewListingService(db, gate, pub, cfg.MaxImages)

	return &Deps{
		Auth: &services.AuthService{
			Users:    userRepo,
			Verifier: auth.NewVerifier(cfg.BotToken),
			Tokens:   auth.NewIssuer(cfg.JWTSecret),
			AdminIDs: cfg.AdminTelegramIDs,
			DevMode:  cfg.IsDevelopment(),
		},
		Listings:     listings,
		Admin:        &services.AdminService{Listings: listings, Users: userRepo, Events: pub},
		Directory:    services.NewDirectoryService(repos.NewServiceRepo(db)),
		Uploads:      &services.UploadService{Store: store, MaxFiles: cfg.MaxImages, MaxFileSize: int64(cfg.MaxFileSize)},
		FrontendURL:  cfg.FrontendURL,
		RateLimitMax: cfg.RateLimitMax,
	}
}
