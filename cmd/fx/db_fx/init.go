package db_fx

import (
	"go.uber.org/fx"

	"tokora/internal/infra"
)

var Module = fx.Provide(infra.InitPostgresql)
