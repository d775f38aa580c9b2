package main

import (
	"go.uber.org/fx"

	"github.com/spicyhq/peppers/internal/authorization"
	"github.com/spicyhq/peppers/internal/clock"
	"github.com/spicyhq/peppers/internal/config"
	"github.com/spicyhq/peppers/internal/kv"
	"github.com/spicyhq/peppers/internal/notify"
	"github.com/spicyhq/peppers/internal/observability"
	"github.com/spicyhq/peppers/internal/pepper"
	"github.com/spicyhq/peppers/internal/ratelimit"
	"github.com/spicyhq/peppers/internal/revision"
	"github.com/spicyhq/peppers/internal/server"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		clock.Module,
		kv.Module,
		revision.Module,
		authorization.Module,
		pepper.Module,
		notify.Module,
		ratelimit.Module,
		server.Module,
	)
	app.Run()
}
