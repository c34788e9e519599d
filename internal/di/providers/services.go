package providers

import (
	"github.com/samber/do/v2"

	"github.com/icgdb/icgdb-server/internal/auth"
	"github.com/icgdb/icgdb-server/internal/config"
	"github.com/icgdb/icgdb-server/internal/logger"
	"github.com/icgdb/icgdb-server/internal/media/images"
	"github.com/icgdb/icgdb-server/internal/service"
	"github.com/icgdb/icgdb-server/internal/validation"
)

// ProvideValidator provides the shared request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvidePictureStorage provides the directory uploaded pictures live in.
func ProvidePictureStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return images.NewStorage(cfg.Data.PicturesPath())
}

// ProvideNameRegistry provides the per-kind name lookup.
func ProvideNameRegistry(i do.Injector) (*service.NameRegistry, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return service.NewNameRegistry(storeHandle.Store), nil
}

// ProvideCategoryService provides the genre and publisher service.
func ProvideCategoryService(i do.Injector) (*service.CategoryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCategoryService(storeHandle.Store, v, searchService, log.Logger), nil
}

// ProvideGameService provides the game service.
func ProvideGameService(i do.Injector) (*service.GameService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	pictures := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGameService(storeHandle.Store, v, service.GameServiceConfig{
		Indexer:         searchService,
		Pictures:        pictures,
		MaxPictureBytes: cfg.Upload.MaxBytes,
		Logger:          log.Logger,
	}), nil
}

// ProvideUserService provides the user service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, log.Logger), nil
}

// ProvideAuthService provides the login service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	google := do.MustInvoke[*GoogleHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	users := do.MustInvoke[*service.UserService](i)
	log := do.MustInvoke[*logger.Logger](i)

	// A nil *GoogleProvider must stay a nil interface.
	var provider service.GoogleAuthenticator
	if google.Provider != nil {
		provider = google.Provider
	}

	return service.NewAuthService(provider, tokenService, users, log.Logger), nil
}
