package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/urbanvitaliz/survey/app"
	"github.com/urbanvitaliz/survey/config"
	"github.com/urbanvitaliz/survey/database"
	"github.com/urbanvitaliz/survey/fixture"
	"github.com/urbanvitaliz/survey/log"
	"github.com/urbanvitaliz/survey/routes"
	"github.com/urbanvitaliz/survey/survey"
)

func main() {
	cfg, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if err = log.SetFormat(cfg.LogFormat); err != nil {
		log.Fatal("main.log_format:", err)
	}

	navigation, err := survey.ParseMode(cfg.Navigation)
	if err != nil {
		log.Fatal("main.navigation:", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	if cfg.Fixture != "" {
		loaded, err := fixture.LoadFile(context.Background(), db, cfg.Fixture)
		if err != nil {
			log.Fatal("main.fixture:", err)
		}
		log.WithFields(log.Fields{"survey": loaded.ID, "file": cfg.Fixture}).Info("fixture loaded")
	}

	app := app.App{
		DB:         db,
		Config:     cfg,
		Navigation: navigation,
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
