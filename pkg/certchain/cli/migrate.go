package cli

import (
	"strconv"

	"github.com/gobuffalo/pop"
	"github.com/gobuffalo/pop/logging"
	"github.com/sirupsen/logrus"
)

var popLogLevels = map[logging.Level]logrus.Level{
	logging.Debug: logrus.DebugLevel,
	logging.Info:  logrus.InfoLevel,
	logging.Warn:  logrus.WarnLevel,
	logging.Error: logrus.ErrorLevel,
}

// Run applies the certificate, outbox and API key schema, or rolls back the
// last --down steps.
func (cmd *MigrateCmd) Run(cli *CLI) error {
	appConfig, err := loadConfig(cli.Config, false)
	if err != nil {
		return err
	}
	db := appConfig.Database

	pop.SetLogger(func(lvl logging.Level, s string, args ...interface{}) {
		if level, ok := popLogLevels[lvl]; ok {
			logrus.StandardLogger().Logf(level, s, args...)
		}
	})

	options := map[string]string{}
	if db.SSLMode != "" {
		options["sslmode"] = db.SSLMode
	}
	conn, err := pop.NewConnection(&pop.ConnectionDetails{
		Dialect:  "postgres",
		Database: db.Database,
		Host:     db.Host,
		Port:     strconv.Itoa(db.Port),
		User:     db.User,
		Password: db.Password,
		Options:  options,
	})
	if err != nil {
		return err
	}
	if cmd.Down == 0 {
		if err := conn.Dialect.CreateDB(); err != nil {
			logrus.Warnf("database %q not created: %v", db.Database, err)
		}
	}

	migrator, err := pop.NewFileMigrator(cmd.Path, conn)
	if err != nil {
		return err
	}
	migrator.SchemaPath = "" // no schema dump

	if cmd.Down > 0 {
		logrus.Infof("rolling back %d migration(s) from %s", cmd.Down, cmd.Path)
		return migrator.Down(cmd.Down)
	}
	return migrator.Up()
}
