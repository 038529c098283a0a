package db

import (
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"qbopt/config"
	"qbopt/db/models"
)

// Database is the append-only action journal. It is an audit trail of
// what the optimizer did; nothing in it feeds back into scheduling.
type Database struct {
	db  *gorm.DB
	run *models.Run
}

func Init() (*Database, error) {
	gdb, err := gorm.Open(sqlite.Open(config.Main.DB.Path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := gdb.AutoMigrate(&models.Run{}, &models.Action{}); err != nil {
		return nil, err
	}

	run := &models.Run{StartedAt: time.Now().Unix()}
	if err := gdb.Create(run).Error; err != nil {
		return nil, err
	}

	return &Database{
		db:  gdb,
		run: run,
	}, nil
}

// Record appends one issued action to the journal. Write failures only
// log: the journal must never affect the control loop.
func (d *Database) Record(kind, hash, torrent, detail string) {
	action := &models.Action{
		RunID:    d.run.ID,
		Kind:     kind,
		Hash:     hash,
		Torrent:  torrent,
		Detail:   detail,
		IssuedAt: time.Now().Unix(),
	}
	if err := d.db.Create(action).Error; err != nil {
		log.Error().Err(err).Str("kind", kind).Msg("Failed to journal action")
	}
}

func (d *Database) Close() {
	d.run.FinishedAt = time.Now().Unix()
	if err := d.db.Save(d.run).Error; err != nil {
		log.Error().Err(err).Msg("Failed to finalize journal run")
	}
	sqlDB, err := d.db.DB()
	if err != nil {
		log.Error().Err(err).Msg("Failed to access journal connection")
		return
	}
	sqlDB.Close()
}
