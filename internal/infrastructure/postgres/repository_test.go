package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/synqit/synqit-backend/internal/domain/entity"
	"github.com/synqit/synqit-backend/internal/domain/repository"
	"github.com/synqit/synqit-backend/pkg/helpers"
)

// One postgres container is shared by every test in the package; each test
// starts from empty tables.
var (
	pgOnce      sync.Once
	pgContainer tc.Container
	pgPool      *pgxpool.Pool
	pgErr       error
)

func TestMain(m *testing.M) {
	code := m.Run()
	if pgPool != nil {
		pgPool.Close()
	}
	if pgContainer != nil {
		_ = pgContainer.Terminate(context.Background())
	}
	os.Exit(code)
}

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests skipped in short mode")
	}
	tc.SkipIfProviderIsNotHealthy(t)

	pgOnce.Do(func() {
		pgContainer, pgPool, pgErr = startPostgres(context.Background())
	})
	require.NoError(t, pgErr)

	_, err := pgPool.Exec(context.Background(), `TRUNCATE users CASCADE`)
	require.NoError(t, err)
	return pgPool
}

func startPostgres(ctx context.Context) (tc.Container, *pgxpool.Pool, error) {
	req := tc.ContainerRequest{
		Image: "postgres:15-alpine",
		Env: map[string]string{
			"POSTGRES_USER":     "synqit",
			"POSTGRES_PASSWORD": "synqit",
			"POSTGRES_DB":       "synqit_test",
		},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(90 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		return nil, nil, err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return container, nil, err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return container, nil, err
	}
	dsn := fmt.Sprintf("postgres://synqit:synqit@%s:%s/synqit_test?sslmode=disable", host, port.Port())

	if err := migrateUp(dsn); err != nil {
		return container, nil, err
	}
	pool, err := NewPool(ctx, PoolConfig{
		DSN:         dsn,
		MaxConns:    16,
		MaxConnLife: time.Hour,
		Retries:     5,
		RetryDelay:  time.Second,
	}, helpers.NewDiscardLogger())
	return container, pool, err
}

func migrateUp(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://../../../db/migrations", "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func seedUser(t *testing.T, pool *pgxpool.Pool, email string) *entity.User {
	t.Helper()
	u := &entity.User{
		Email:            email,
		Password:         "$2a$10$hash",
		FirstName:        "Ada",
		LastName:         "Lovelace",
		UserType:         entity.UserTypeStartup,
		SubscriptionTier: entity.SubscriptionFree,
	}
	require.NoError(t, NewUserRepository(pool).Create(context.Background(), u))
	return u
}

func seedProject(t *testing.T, pool *pgxpool.Pool, owner *entity.User, name string) *entity.Project {
	t.Helper()
	p := &entity.Project{
		OwnerID:     owner.ID,
		Name:        name,
		Description: name + " description",
		ProjectType: entity.ProjectTypeDeFi,
		Blockchains: []entity.BlockchainPreference{{Blockchain: "ETHEREUM", IsPrimary: true}},
		Tags:        []string{"defi"},
	}
	require.NoError(t, NewProjectRepository(pool).Create(context.Background(), p))
	return p
}

func seedPartnership(t *testing.T, pool *pgxpool.Pool, from, to *entity.Project) *entity.Partnership {
	t.Helper()
	p := &entity.Partnership{
		RequesterID:        from.OwnerID,
		RequesterProjectID: from.ID,
		ReceiverID:         to.OwnerID,
		ReceiverProjectID:  to.ID,
		PartnershipType:    "TECHNICAL_INTEGRATION",
		Title:              "Bridge integration",
	}
	require.NoError(t, NewPartnershipRepository(pool).Create(context.Background(), p))
	return p
}

func TestPartnershipCreateRejectsReverseDirectionDuplicate(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewPartnershipRepository(pool)

	a := seedProject(t, pool, seedUser(t, pool, "a@synqit.io"), "Alpha")
	b := seedProject(t, pool, seedUser(t, pool, "b@synqit.io"), "Beta")
	first := seedPartnership(t, pool, a, b)

	reverse := &entity.Partnership{
		RequesterID:        b.OwnerID,
		RequesterProjectID: b.ID,
		ReceiverID:         a.OwnerID,
		ReceiverProjectID:  a.ID,
		PartnershipType:    "MARKETING",
	}
	err := repo.Create(ctx, reverse)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	active, err := repo.FindActiveBetween(ctx, b.ID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, first.ID, active.ID)

	// A closed request frees the pair for a new one in either direction.
	ok, err := repo.Transition(ctx, first.ID, entity.PartnershipRejected, time.Now(), "not now")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, repo.Create(ctx, reverse))
	assert.Equal(t, entity.PartnershipPending, reverse.Status)
}

func TestPartnershipTransitionRaceHasSingleWinner(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewPartnershipRepository(pool)

	a := seedProject(t, pool, seedUser(t, pool, "a@synqit.io"), "Alpha")
	b := seedProject(t, pool, seedUser(t, pool, "b@synqit.io"), "Beta")
	p := seedPartnership(t, pool, a, b)

	const responders = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []entity.PartnershipStatus
	)
	start := make(chan struct{})
	for i := 0; i < responders; i++ {
		status := entity.PartnershipAccepted
		if i%2 == 1 {
			status = entity.PartnershipRejected
		}
		wg.Add(1)
		go func(status entity.PartnershipStatus) {
			defer wg.Done()
			<-start
			ok, err := repo.Transition(ctx, p.ID, status, time.Now(), "")
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				winners = append(winners, status)
				mu.Unlock()
			}
		}(status)
	}
	close(start)
	wg.Wait()

	require.Len(t, winners, 1)
	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, winners[0], got.Status)
	assert.NotNil(t, got.RespondedAt)
}

func TestProjectUpdateReplacesChildCollections(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewProjectRepository(pool)

	owner := seedUser(t, pool, "owner@synqit.io")
	p := &entity.Project{
		OwnerID:     owner.ID,
		Name:        "Alpha",
		Description: "Lending protocol",
		ProjectType: entity.ProjectTypeDeFi,
		Blockchains: []entity.BlockchainPreference{
			{Blockchain: "SOLANA"},
			{Blockchain: "ETHEREUM", IsPrimary: true},
		},
		Tags: []string{"lending", "defi", "yield"},
	}
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"lending", "defi", "yield"}, got.Tags)
	assert.Equal(t, []entity.BlockchainPreference{
		{Blockchain: "ETHEREUM", IsPrimary: true},
		{Blockchain: "SOLANA"},
	}, got.Blockchains)

	got.Tags = []string{"zk", "lending"}
	got.Blockchains = []entity.BlockchainPreference{{Blockchain: "POLYGON", IsPrimary: true}}
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"zk", "lending"}, again.Tags)
	assert.Equal(t, []entity.BlockchainPreference{{Blockchain: "POLYGON", IsPrimary: true}}, again.Blockchains)

	again.Tags = nil
	again.Blockchains = nil
	require.NoError(t, repo.Update(ctx, again))
	cleared, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, cleared.Tags)
	assert.Empty(t, cleared.Blockchains)

	err = repo.Create(ctx, &entity.Project{OwnerID: owner.ID, Name: "Second", Description: "x", ProjectType: entity.ProjectTypeOther})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestRecordLoginFailureCountsEveryConcurrentAttempt(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewUserRepository(pool)
	u := seedUser(t, pool, "target@synqit.io")

	const (
		guesses     = 10
		maxAttempts = 5
		lockFor     = 30 * time.Minute
	)
	now := time.Now().UTC().Truncate(time.Millisecond)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		locked int
	)
	for i := 0; i < guesses; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, until, err := repo.RecordLoginFailure(ctx, u.ID, now, maxAttempts, lockFor)
			assert.NoError(t, err)
			if until != nil {
				mu.Lock()
				locked++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, guesses, got.FailedLoginAttempts)
	require.NotNil(t, got.LockedUntil)
	assert.WithinDuration(t, now.Add(lockFor), *got.LockedUntil, time.Second)
	// The attempt that reached the threshold and every later one see the lock.
	assert.Equal(t, guesses-maxAttempts+1, locked)

	// After the lock lapses the streak restarts at one.
	attempts, until, err := repo.RecordLoginFailure(ctx, u.ID, got.LockedUntil.Add(time.Second), maxAttempts, lockFor)
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Nil(t, until)
}

func TestMessageSearchMatchesWildcardsLiterally(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewMessageRepository(pool)

	a := seedProject(t, pool, seedUser(t, pool, "a@synqit.io"), "Alpha")
	b := seedProject(t, pool, seedUser(t, pool, "b@synqit.io"), "Beta")
	p := seedPartnership(t, pool, a, b)

	for _, content := range []string{"audit is 100% done", "rename to snake_case", "plain update", `path C:\tmp`} {
		require.NoError(t, repo.Create(ctx, &entity.Message{
			PartnershipID: p.ID,
			SenderID:      a.OwnerID,
			ReceiverID:    b.OwnerID,
			Content:       content,
			MessageType:   entity.MessageTypeText,
		}))
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"%", []string{"audit is 100% done"}},
		{"_", []string{"rename to snake_case"}},
		{`\`, []string{`path C:\tmp`}},
		{"UPDATE", []string{"plain update"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			msgs, err := repo.Search(ctx, b.OwnerID, tt.query, 20)
			require.NoError(t, err)
			var got []string
			for _, m := range msgs {
				got = append(got, m.Content)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserDeleteRemovesOwnedRows(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	alice := seedUser(t, pool, "alice@synqit.io")
	a := seedProject(t, pool, alice, "Alpha")
	b := seedProject(t, pool, seedUser(t, pool, "bob@synqit.io"), "Beta")
	p := seedPartnership(t, pool, a, b)

	require.NoError(t, NewUserRepository(pool).Delete(ctx, alice.ID))

	_, err := NewProjectRepository(pool).GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = NewPartnershipRepository(pool).GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = NewProjectRepository(pool).GetByID(ctx, b.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, NewUserRepository(pool).Delete(ctx, alice.ID), repository.ErrNotFound)
}
