package testutil

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/timbra/timbra-backend/pkg/database"
	"github.com/timbra/timbra-backend/pkg/logger"
)

var (
	// Global test container (shared across all integration tests)
	globalContainer *PostgresContainer
	globalDB        *sqlx.DB
	containerOnce   sync.Once
	containerErr    error
)

// IntegrationEnabled reports whether integration tests should run.
// Set TIMBRA_INTEGRATION=1 to enable them; they need Docker.
func IntegrationEnabled() bool {
	return os.Getenv("TIMBRA_INTEGRATION") != ""
}

// SkipUnlessIntegration skips the test unless integration tests are enabled
func SkipUnlessIntegration(t *testing.T) {
	t.Helper()
	if !IntegrationEnabled() {
		t.Skip("integration tests disabled; set TIMBRA_INTEGRATION=1 to run")
	}
}

// IntegrationSuite provides a base for integration tests with real PostgreSQL
type IntegrationSuite struct {
	Container *PostgresContainer
	RawDB     *sqlx.DB
	DB        *database.DB
	Logger    *logger.Logger
}

// NewIntegrationSuite creates a new integration test suite.
// Call this in TestMain to set up shared test infrastructure.
//
// Usage:
//
//	var suite *testutil.IntegrationSuite
//
//	func TestMain(m *testing.M) {
//	    if !testutil.IntegrationEnabled() {
//	        os.Exit(m.Run())
//	    }
//	    ctx := context.Background()
//	    s, err := testutil.NewIntegrationSuite(ctx)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    suite = s
//	    defer suite.Cleanup(ctx)
//	    os.Exit(m.Run())
//	}
func NewIntegrationSuite(ctx context.Context) (*IntegrationSuite, error) {
	container, db, err := getOrCreateContainer(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.New("test", "test")
	wrappedDB, err := database.NewWithDSN(container.DSN, log)
	if err != nil {
		return nil, err
	}

	if err := container.CreateSchema(ctx, db); err != nil {
		return nil, err
	}

	return &IntegrationSuite{
		Container: container,
		RawDB:     db,
		DB:        wrappedDB,
		Logger:    log,
	}, nil
}

// getOrCreateContainer returns the shared test container
func getOrCreateContainer(ctx context.Context) (*PostgresContainer, *sqlx.DB, error) {
	containerOnce.Do(func() {
		globalContainer, containerErr = NewPostgresContainer(ctx, DefaultPostgresConfig())
		if containerErr != nil {
			return
		}
		globalDB, containerErr = globalContainer.Connect(ctx)
	})

	return globalContainer, globalDB, containerErr
}

// Truncate wipes the given tables between tests
func (s *IntegrationSuite) Truncate(t *testing.T, ctx context.Context, tables ...string) {
	t.Helper()
	for _, table := range tables {
		if _, err := s.RawDB.ExecContext(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			t.Fatalf("failed to truncate %s: %v", table, err)
		}
	}
}

// Cleanup tears down the suite's resources
func (s *IntegrationSuite) Cleanup(ctx context.Context) {
	if s.DB != nil {
		s.DB.Close()
	}
	if s.RawDB != nil {
		s.RawDB.Close()
	}
	if s.Container != nil {
		s.Container.Terminate(ctx)
	}
}
