package sqlfx

import (
	"github.com/jmoiron/sqlx"

	"github.com/ostanin/volback/pkg/http/handler"
	"github.com/ostanin/volback/pkg/storage"
)

func RunsRepository(db *sqlx.DB) (
	*storage.RunRepository,
	handler.RunRepository,
) {
	repo := storage.NewRunRepository(db)

	return repo, repo
}
