package main

import (
	"github.com/urfave/cli/v2"

	"storefront/pkg/storefront/infrastructure/mysql"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply database migrations",
		Action: func(c *cli.Context) error {
			cnf, err := parseEnv()
			if err != nil {
				return err
			}

			db, err := mysql.NewConnection(c.Context, cnf.database())
			if err != nil {
				return err
			}
			return mysql.Migrate(db)
		},
	}
}
