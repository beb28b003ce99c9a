package controllers_fx

import (
	"go.uber.org/fx"

	"tourbook/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewAuthController),
	fx.Provide(controllers.NewHealthController))
