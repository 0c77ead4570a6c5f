package providers

import (
	"github.com/samber/do/v2"

	"github.com/cozyshelfapp/shelf-server/internal/auth"
	"github.com/cozyshelfapp/shelf-server/internal/config"
	"github.com/cozyshelfapp/shelf-server/internal/covers"
	"github.com/cozyshelfapp/shelf-server/internal/daily"
	"github.com/cozyshelfapp/shelf-server/internal/logger"
	"github.com/cozyshelfapp/shelf-server/internal/service"
	"github.com/cozyshelfapp/shelf-server/internal/validation"
)

// CoverLookupHandle carries the optional Open Library client. Lookup is nil
// when outbound cover fetches are disabled by configuration.
type CoverLookupHandle struct {
	Lookup service.CoverLookup
}

// ProvideCoverLookup provides the Open Library cover client.
func ProvideCoverLookup(i do.Injector) (CoverLookupHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Covers.Enabled {
		log.Info("Cover lookup disabled by configuration")
		return CoverLookupHandle{}, nil
	}
	return CoverLookupHandle{Lookup: covers.NewClient(log)}, nil
}

// ProvideDailyGenerator provides the daily sticker generator.
func ProvideDailyGenerator(i do.Injector) (*daily.Generator, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return daily.NewGenerator(storeHandle.Store, log), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokens, v, log), nil
}

// ProvideBookService provides the book service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	coverHandle := do.MustInvoke[CoverLookupHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, coverHandle.Lookup, v, log), nil
}

// ProvideStickerService provides the sticker service.
func ProvideStickerService(i do.Injector) (*service.StickerService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	gen := do.MustInvoke[*daily.Generator](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewStickerService(storeHandle.Store, gen, v, log), nil
}

// ProvideGoalService provides the goal service.
func ProvideGoalService(i do.Injector) (*service.GoalService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGoalService(storeHandle.Store, v, log), nil
}

// ProvideDoodleService provides the doodle service.
func ProvideDoodleService(i do.Injector) (*service.DoodleService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewDoodleService(storeHandle.Store, v, log), nil
}

// ProvideBackupService provides the export/import service.
func ProvideBackupService(i do.Injector) (*service.BackupService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBackupService(storeHandle.Store, log), nil
}
