package main

import (
	"log"

	"github.com/panasenco/plsql/cmd/cli"
	"github.com/panasenco/plsql/internal/config"
	"github.com/panasenco/plsql/internal/logger"
)

func main() {
	cfg, err := config.Load("./config/config.toml")
	if err != nil {
		log.Fatal(err)
	}

	if err := logger.Setup(cfg.Logging); err != nil {
		log.Fatal(err)
	}

	cli.PlSql(cfg)
}
