package provisioning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	sqlassets "github.com/code-merge/accompany/database"
	"github.com/code-merge/accompany/domains/onboarding/be/reference"
	"github.com/code-merge/accompany/domains/onboarding/be/service"
	"github.com/code-merge/accompany/platform/go/credentials"
	"github.com/code-merge/accompany/platform/go/persistence"
)

// bcrypt cost used for the system admin's stored password hash.
const bcryptCost = 12

// DB is the subset of a pgx pool the schema operations need. A *pgxpool.Pool
// satisfies it, as do the pgxmock pools used in tests.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// SchemaOps creates the base tables and seed rows of a freshly provisioned
// site. Every operation runs in its own transaction so table creation and the
// rows that depend on it land together.
type SchemaOps struct {
	db     DB
	logger *zap.Logger
}

func NewSchemaOps(db DB, logger *zap.Logger) *SchemaOps {
	if db == nil {
		panic("schema ops require a database handle")
	}
	if logger == nil {
		panic("schema ops require logger")
	}
	return &SchemaOps{db: db, logger: logger}
}

// CreateAdminUser ensures the users table and inserts the system admin with a
// bcrypt-hashed password. A duplicate email reports as a failed step, not an
// error to retry.
func (s *SchemaOps) CreateAdminUser(ctx context.Context, email, password string) service.Result {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return adminFailed(err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, sqlassets.UsersSQL); err != nil {
		return adminFailed(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return adminFailed(err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO users (username, hashed_password, role) VALUES ($1, $2, 'system_admin')`,
		email, string(hash)); err != nil {
		if isUniqueViolation(err) {
			return service.Result{Msg: fmt.Sprintf("❌ Email '%s' already exists", email)}
		}
		return adminFailed(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return adminFailed(err)
	}

	s.logger.Info("system admin created", zap.String("email", email))
	return service.Result{OK: true, Msg: "✅ System admin user created"}
}

// CreateCompany ensures the company table and records the company profile.
func (s *SchemaOps) CreateCompany(ctx context.Context, name, industry string) service.Result {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return companyFailed(err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, sqlassets.CompanySQL); err != nil {
		return companyFailed(err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO company (name, industry) VALUES ($1, $2)`, name, industry); err != nil {
		return companyFailed(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return companyFailed(err)
	}

	s.logger.Info("company record created", zap.String("company", name))
	return service.Result{OK: true, Msg: "✅ Company record created"}
}

// SeedLanguages ensures the languages table and inserts one row per supported
// language code, labels uppercased. Present rows are left untouched.
func (s *SchemaOps) SeedLanguages(ctx context.Context) string {
	if err := s.seedLanguages(ctx); err != nil {
		return fmt.Sprintf("❌ Failed to seed languages: %v", err)
	}
	return "✔️ Languages seeded"
}

func (s *SchemaOps) seedLanguages(ctx context.Context) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, sqlassets.LanguagesSQL); err != nil {
		return err
	}
	for _, code := range reference.Languages {
		if _, err := tx.Exec(ctx,
			`INSERT INTO languages (code, label) VALUES ($1, $2) ON CONFLICT (code) DO NOTHING`,
			code, strings.ToUpper(code)); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// SeedModules ensures the modules table and enables the requested modules.
// Present rows are left untouched.
func (s *SchemaOps) SeedModules(ctx context.Context, names []string) string {
	if err := s.seedModules(ctx, names); err != nil {
		return fmt.Sprintf("❌ Failed to seed modules: %v", err)
	}
	return "✔️ Modules seeded"
}

func (s *SchemaOps) seedModules(ctx context.Context, names []string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, sqlassets.ModulesSQL); err != nil {
		return err
	}
	for _, name := range names {
		if _, err := tx.Exec(ctx,
			`INSERT INTO modules (name, enabled) VALUES ($1, TRUE) ON CONFLICT (name) DO NOTHING`,
			name); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Close releases the underlying handle.
func (s *SchemaOps) Close() {
	s.db.Close()
}

func adminFailed(err error) service.Result {
	return service.Result{Msg: fmt.Sprintf("❌ Failed to create admin: %v", err)}
}

func companyFailed(err error) service.Result {
	return service.Result{Msg: fmt.Sprintf("❌ Failed to create company: %v", err)}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// PoolFactory opens a pgx pool for a stored credential record. Pools connect
// lazily, so an unreachable target surfaces at the first schema operation
// rather than here.
type PoolFactory struct {
	logger *zap.Logger
}

func NewPoolFactory(logger *zap.Logger) *PoolFactory {
	if logger == nil {
		panic("pool factory requires logger")
	}
	return &PoolFactory{logger: logger}
}

func (f *PoolFactory) ForRecord(ctx context.Context, rec credentials.Record) (service.SchemaOps, error) {
	connString := persistence.TargetURL(rec.User, rec.Password, rec.Host, rec.Port, rec.DBName, rec.SSL, rec.SSLCert)

	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: connString})
	if err != nil {
		return nil, fmt.Errorf("open target pool: %w", err)
	}

	return NewSchemaOps(pool, f.logger), nil
}

var (
	_ service.SchemaOps        = (*SchemaOps)(nil)
	_ service.SchemaOpsFactory = (*PoolFactory)(nil)
)
