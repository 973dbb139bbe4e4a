package database

import (
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/urbanvitaliz/survey/config"
	"github.com/urbanvitaliz/survey/log"
)

func Open(cfg config.Config) (*sqlx.DB, error) {
	return OpenDSN(cfg.DBDriver, cfg.DSN())
}

// OpenDSN opens the database and brings its schema up to date.
func OpenDSN(driver, dsn string) (db *sqlx.DB, err error) {
	db, err = sqlx.Open(driver, dsn)
	if err != nil {
		return
	}

	// db tuning options
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	err = db.Ping()
	if err != nil {
		db.Close()
		return
	}

	err = migrateDB(db)
	if err != nil {
		db.Close()
		return
	}

	log.Debugf("database.open: %s ready", driver)
	return
}
