package models

import "gorm.io/gorm"

// Run is one optimizer process invocation.
type Run struct {
	gorm.Model
	StartedAt  int64
	FinishedAt int64

	Actions []Action
}

// Action is one mutation the optimizer issued against the client.
type Action struct {
	ID       uint `gorm:"primaryKey"`
	RunID    uint
	Kind     ActionKind
	Hash     string
	Torrent  string
	Detail   string
	IssuedAt int64
}

type ActionKind = string

const (
	ActionPromote  ActionKind = "promote"
	ActionSkip     ActionKind = "skip"
	ActionRestart  ActionKind = "restart"
	ActionRemove   ActionKind = "remove"
	ActionShutdown ActionKind = "shutdown"
)
