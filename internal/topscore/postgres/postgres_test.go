package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cnamway/keybout/internal/game"
	"github.com/cnamway/keybout/internal/scoring"
	"github.com/cnamway/keybout/internal/topscore/postgres"
)

var sink *postgres.Sink

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine3.22",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testusername"),
		tcpostgres.WithPassword("testpassword"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		panic(err)
	}

	connString, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic(err)
	}

	if err := postgres.Migrate(connString); err != nil {
		panic(err)
	}

	sink, err = postgres.New(ctx, connString, zerolog.Nop())
	if err != nil {
		panic(err)
	}

	code := m.Run()

	sink.Close()
	container.Terminate(ctx)
	os.Exit(code)
}

func TestSink_RecordAndTop(t *testing.T) {
	ctx := context.Background()
	roundScores := []scoring.Score{
		{UserName: "alice", Points: 10, Speed: 120},
		{UserName: "bob", Points: 4, Speed: 48},
	}

	sink.Record(ctx, game.StyleRegular, "en", game.DifficultyEasy, roundScores, 5)

	top, err := sink.Top(ctx, game.StyleRegular, "en", game.DifficultyEasy, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "alice", top[0].UserName)
	assert.Equal(t, "bob", top[1].UserName)
}

func TestSink_Record_EmptyRoundScoresIsANoop(t *testing.T) {
	ctx := context.Background()
	sink.Record(ctx, game.StyleCalculus, "en", game.DifficultyHard, nil, 3)

	top, err := sink.Top(ctx, game.StyleCalculus, "en", game.DifficultyHard, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}
