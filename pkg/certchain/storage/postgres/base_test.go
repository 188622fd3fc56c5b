package postgres_test

import (
	"context"
	"os"
	"strconv"

	"github.com/certchain/certchain/pkg/util"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
)

// BaseTestSuite runs against the database named by the DATABASE_* variables and
// starts every test from empty tables.
type BaseTestSuite struct {
	suite.Suite
	ctx    context.Context
	pgPool *pgxpool.Pool
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func (s *BaseTestSuite) SetupTest() {
	s.ctx = context.Background()
	if os.Getenv("DATABASE_HOST") == "" {
		s.T().Skip("DATABASE_HOST is not set")
	}
	port, err := strconv.Atoi(envOr("DATABASE_PORT", "5432"))
	s.Require().NoError(err)

	pool, err := util.NewPostgresDBPool(util.PostgresDatabaseConfig{
		Host:     os.Getenv("DATABASE_HOST"),
		Port:     port,
		Database: envOr("DATABASE_NAME", "certchain"),
		User:     envOr("DATABASE_USER", "certchain"),
		Password: os.Getenv("DATABASE_PASSWORD"),
		SSLMode:  "disable",
		PoolSize: 5,
	})
	s.Require().NoError(err)
	s.pgPool = pool

	_, err = pool.Exec(s.ctx, `TRUNCATE certificate, certificate_history, token_serial, consensus_outbox, api_key, api_key_history RESTART IDENTITY`)
	s.Require().NoError(err)
}

func (s *BaseTestSuite) TearDownTest() {
	if s.pgPool != nil {
		s.pgPool.Close()
	}
}
