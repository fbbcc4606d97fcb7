package main

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"storefront/pkg/storefront/application/service"
	"storefront/pkg/storefront/infrastructure/auth"
	"storefront/pkg/storefront/infrastructure/event"
	"storefront/pkg/storefront/infrastructure/mysql"
)

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "create the setting keys and the administrator account",
		Action: func(c *cli.Context) error {
			cnf, err := parseEnv()
			if err != nil {
				return err
			}

			db, err := mysql.NewConnection(c.Context, cnf.database())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := mysql.SeedSettings(c.Context, db); err != nil {
				return err
			}
			log.Info("settings seeded")

			if cnf.AdminEmail == "" {
				log.Warn("ADMIN_EMAIL is empty, skipping administrator account")
				return nil
			}
			if cnf.AdminPassword == "" {
				return errors.New("ADMIN_PASSWORD is required together with ADMIN_EMAIL")
			}

			users := service.NewUserService(
				mysql.NewUnitOfWork(db),
				event.NewDispatcher(log.StandardLogger()),
				auth.NewPasswordManager(),
				auth.NewTokenManager(cnf.JWTSecret, cnf.JWTTTL),
			)
			admin, err := users.EnsureAdmin(c.Context, cnf.AdminName, cnf.AdminEmail, cnf.AdminPassword)
			if err != nil {
				return err
			}
			log.WithFields(log.Fields{"userID": admin.ID, "email": admin.Email}).Info("administrator ready")
			return nil
		},
	}
}
