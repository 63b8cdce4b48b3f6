package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/tamedachi/tamedachi/internal/config"
	"github.com/tamedachi/tamedachi/internal/migration"
	"github.com/tamedachi/tamedachi/internal/observability"
	"github.com/tamedachi/tamedachi/internal/server"
	"github.com/tamedachi/tamedachi/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
