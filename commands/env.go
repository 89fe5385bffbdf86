package commands

import (
	"shiftbot/clients/coindesk"
	"shiftbot/config"
	"shiftbot/db"
	"shiftbot/services/shifts"
)

// Env is the execution environment handed to command handlers. Shifts and
// Warnings are nil when the PocketBase integration or the Postgres store is
// not configured; the stub handlers on this surface never call them, but the
// environment is shaped the same way the gateway deployment shapes it.
type Env struct {
	Config   *config.AppConfig
	Shifts   *shifts.Service
	Warnings *db.PostgresWarningsRepository
	Bitcoin  *coindesk.Client
}
