package app

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/urbanvitaliz/survey/config"
	"github.com/urbanvitaliz/survey/store"
	"github.com/urbanvitaliz/survey/survey"
)

type App struct {
	*sqlx.DB
	config.Config
	Navigation survey.Mode
}

// Store is bound to the request transaction when there is one.
func (app App) Store(ctx context.Context) *store.Store {
	return store.FromContext(ctx, app.DB)
}

func (app App) Navigator(ctx context.Context) *survey.Navigator {
	return survey.NewNavigator(app.Store(ctx), app.Navigation)
}
