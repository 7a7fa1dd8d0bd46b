package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/friendlies/go/internal/dbconfig"
	"github.com/mcdev12/friendlies/go/internal/matches"
	"github.com/mcdev12/friendlies/go/internal/migrations"
	"github.com/mcdev12/friendlies/go/internal/mongoutil"
	"github.com/mcdev12/friendlies/go/internal/teams"
)

// Storage holds the repositories for the configured backend
type Storage struct {
	Teams   teams.TeamsRepository
	Matches matches.MatchesRepository
	Close   func()
}

func setupStorage(ctx context.Context, config StorageConfig) (*Storage, error) {
	switch config.Backend {
	case backendPostgres:
		return setupPostgres(ctx)
	case backendMongo:
		return setupMongo(ctx, config)
	default:
		log.Info().Msg("using in-memory storage")
		return &Storage{
			Teams:   teams.NewMemoryRepository(),
			Matches: matches.NewMemoryRepository(),
			Close:   func() {},
		}, nil
	}
}

func setupPostgres(ctx context.Context) (*Storage, error) {
	dbCfg, err := dbconfig.NewConfigFromEnv()
	if err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(dbCfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	poolCfg.MaxConns = dbCfg.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := migrations.Apply(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info().
		Str("user", dbCfg.User).
		Str("host", dbCfg.Host).
		Int("port", dbCfg.Port).
		Str("database", dbCfg.Database).
		Msg("connected to database")

	return &Storage{
		Teams:   teams.NewRepository(pool),
		Matches: matches.NewRepository(pool),
		Close:   pool.Close,
	}, nil
}

func setupMongo(ctx context.Context, config StorageConfig) (*Storage, error) {
	client, db, err := mongoutil.Connect(ctx, config.MongoURI, config.MongoDatabase)
	if err != nil {
		return nil, err
	}
	closeClient := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to disconnect from mongo")
		}
	}

	teamsRepo := teams.NewMongoRepository(db)
	matchesRepo := matches.NewMongoRepository(db)
	if err := teamsRepo.EnsureIndexes(ctx); err != nil {
		closeClient()
		return nil, err
	}
	if err := matchesRepo.EnsureIndexes(ctx); err != nil {
		closeClient()
		return nil, err
	}

	log.Info().Str("database", config.MongoDatabase).Msg("connected to mongo")
	return &Storage{
		Teams:   teamsRepo,
		Matches: matchesRepo,
		Close:   closeClient,
	}, nil
}
