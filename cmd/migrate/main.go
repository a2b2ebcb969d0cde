package main

import (
	"database/sql"
	"flag"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/invorya/stocksync-api/db"
	"github.com/invorya/stocksync-api/pkg/config"
	"github.com/invorya/stocksync-api/pkg/logger"
)

// migrate aplica las migraciones embebidas contra la base configurada.
// Comandos: up (default), down, status, version.
func main() {
	cmd := flag.String("cmd", "up", "comando goose: up|down|status|version")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})

	conn, err := sql.Open("pgx", cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("abrir conexión a PostgreSQL")
	}
	defer conn.Close()

	goose.SetBaseFS(db.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal().Err(err).Msg("configurar dialecto goose")
	}

	if err := goose.Run(*cmd, conn, "migrations"); err != nil {
		log.Error().Err(err).Str("cmd", *cmd).Msg("migración fallida")
		os.Exit(1)
	}

	log.Info().Str("cmd", *cmd).Msg("migración completada")
}
