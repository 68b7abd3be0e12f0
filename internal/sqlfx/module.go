package sqlfx

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(OpenSqliteDatabase),
	fx.Provide(RunsRepository),
	fx.Invoke(CloseSqliteDatabase),
)
