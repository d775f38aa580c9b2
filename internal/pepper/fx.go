package pepper

import (
	"github.com/spicyhq/peppers/internal/pepper/repository"
	"github.com/spicyhq/peppers/internal/pepper/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pepper.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
