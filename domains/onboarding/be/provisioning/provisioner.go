// Package provisioning creates or attaches the database behind a new site and
// runs the schema/seed operations against it. It implements the collaborator
// contracts declared by the service package.
package provisioning

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/code-merge/accompany/domains/onboarding/be/service"
	"github.com/code-merge/accompany/platform/go/credentials"
	"github.com/code-merge/accompany/platform/go/persistence"
)

const (
	scopedPasswordLength = 20
	defaultDialTimeout   = 10 * time.Second
)

// Provisioner sets up the database behind a new site: a fresh database with a
// scoped admin role on the local server, or a verified connection to an
// existing one. Credentials end up in the store either way.
type Provisioner struct {
	admin       persistence.AdminConfig
	store       *credentials.Store
	logger      *zap.Logger
	dialTimeout time.Duration
}

// ProvisionerConfig carries the provisioner's dependencies. DialTimeout bounds
// each connection attempt; zero means the default.
type ProvisionerConfig struct {
	Admin       persistence.AdminConfig
	Store       *credentials.Store
	Logger      *zap.Logger
	DialTimeout time.Duration
}

func NewProvisioner(cfg ProvisionerConfig) *Provisioner {
	if cfg.Store == nil {
		panic("provisioner requires credential store")
	}
	if cfg.Logger == nil {
		panic("provisioner requires logger")
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}

	return &Provisioner{
		admin:       cfg.Admin,
		store:       cfg.Store,
		logger:      cfg.Logger,
		dialTimeout: dialTimeout,
	}
}

// CreateStandard provisions dbName on the local server with a dedicated
// `<db>_admin` role, grants it the database and the public schema, and
// persists the scoped credentials.
func (p *Provisioner) CreateStandard(ctx context.Context, dbName string) (credentials.Record, service.Result) {
	dbName = strings.TrimSpace(dbName)
	if dbName == "" {
		return credentials.Record{}, dbSetupFailed(errors.New("database name is empty"))
	}

	adminUser := dbName + "_admin"
	adminPass, err := GeneratePassword(scopedPasswordLength)
	if err != nil {
		return credentials.Record{}, dbSetupFailed(err)
	}

	if err := p.createDatabaseAndRole(ctx, dbName, adminUser, adminPass); err != nil {
		p.logger.Warn("standard database setup failed", zap.String("db_name", dbName), zap.Error(err))
		return credentials.Record{}, dbSetupFailed(err)
	}
	if err := p.grantSchemaAccess(ctx, dbName, adminUser); err != nil {
		p.logger.Warn("standard database setup failed", zap.String("db_name", dbName), zap.Error(err))
		return credentials.Record{}, dbSetupFailed(err)
	}

	rec := credentials.Record{
		DBName:   dbName,
		User:     adminUser,
		Password: adminPass,
		Host:     p.admin.Host,
		Port:     p.admin.Port,
	}
	if err := p.store.Write(dbName, rec, nil); err != nil {
		return credentials.Record{}, dbSetupFailed(err)
	}

	p.logger.Info("standard database provisioned",
		zap.String("db_name", dbName), zap.String("admin_user", adminUser))

	return rec, service.Result{
		OK:  true,
		Msg: fmt.Sprintf("✅ Created DB '%s' with scoped admin '%s'", dbName, adminUser),
	}
}

// ConnectCustom verifies an operator-supplied database is reachable with the
// given credentials, then persists them. No server-side objects are touched.
func (p *Provisioner) ConnectCustom(ctx context.Context, req service.CustomDBRequest) (credentials.Record, service.Result) {
	certPath := strings.TrimSpace(req.CertPath)
	if req.SSL {
		if certPath == "" {
			return credentials.Record{}, service.Result{Msg: "❌ SSL enabled but certificate not found on disk."}
		}
		if _, err := os.Stat(certPath); err != nil {
			return credentials.Record{}, service.Result{Msg: "❌ SSL enabled but certificate not found on disk."}
		}
	}

	target := persistence.TargetURL(req.User, req.Password, req.Host, req.Port, req.DBName, req.SSL, certPath)

	dialCtx, cancel := context.WithTimeout(ctx, p.dialTimeout)
	defer cancel()
	if err := persistence.CheckReachable(dialCtx, target); err != nil {
		p.logger.Warn("custom database unreachable",
			zap.String("db_name", req.DBName), zap.String("host", req.Host), zap.Error(err))
		return credentials.Record{}, connectFailed(err)
	}

	rec := credentials.Record{
		DBName:   req.DBName,
		User:     req.User,
		Password: req.Password,
		Host:     req.Host,
		Port:     req.Port,
		SSL:      req.SSL,
	}

	var certPEM []byte
	if req.SSL {
		rec.SSLCert = certPath
		pem, err := os.ReadFile(certPath)
		if err != nil {
			return credentials.Record{}, connectFailed(err)
		}
		certPEM = pem
	}

	if err := p.store.Write(req.DBName, rec, certPEM); err != nil {
		return credentials.Record{}, connectFailed(err)
	}

	p.logger.Info("custom database connected",
		zap.String("db_name", req.DBName), zap.String("host", req.Host))

	return rec, service.Result{
		OK:  true,
		Msg: fmt.Sprintf("✅ Connected to custom DB '%s' and saved credentials.", req.DBName),
	}
}

// connect dials with the provisioner's per-attempt timeout. The returned
// connection is not bound to the dial deadline.
func (p *Provisioner) connect(ctx context.Context, connString string) (*pgx.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, p.dialTimeout)
	defer cancel()
	return pgx.Connect(dialCtx, connString)
}

func (p *Provisioner) createDatabaseAndRole(ctx context.Context, dbName, adminUser, adminPass string) error {
	conn, err := p.connect(ctx, p.admin.MaintenanceURL())
	if err != nil {
		return fmt.Errorf("connect maintenance db: %w", err)
	}
	defer conn.Close(ctx) // nolint:errcheck

	// CREATE DATABASE cannot run inside a transaction; plain autocommit execs.
	if _, err := conn.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", pgx.Identifier{dbName}.Sanitize())); err != nil {
		return fmt.Errorf("create database: %w", err)
	}

	createUser := fmt.Sprintf("CREATE USER %s WITH ENCRYPTED PASSWORD '%s'",
		pgx.Identifier{adminUser}.Sanitize(), strings.ReplaceAll(adminPass, "'", "''"))
	if _, err := conn.Exec(ctx, createUser); err != nil {
		return fmt.Errorf("create scoped admin: %w", err)
	}

	grant := fmt.Sprintf("GRANT ALL PRIVILEGES ON DATABASE %s TO %s",
		pgx.Identifier{dbName}.Sanitize(), pgx.Identifier{adminUser}.Sanitize())
	if _, err := conn.Exec(ctx, grant); err != nil {
		return fmt.Errorf("grant database privileges: %w", err)
	}

	return nil
}

func (p *Provisioner) grantSchemaAccess(ctx context.Context, dbName, adminUser string) error {
	conn, err := p.connect(ctx, p.admin.DatabaseURL(dbName))
	if err != nil {
		return fmt.Errorf("connect new database: %w", err)
	}
	defer conn.Close(ctx) // nolint:errcheck

	role := pgx.Identifier{adminUser}.Sanitize()
	if _, err := conn.Exec(ctx, "GRANT USAGE ON SCHEMA public TO "+role); err != nil {
		return fmt.Errorf("grant schema usage: %w", err)
	}
	if _, err := conn.Exec(ctx, "GRANT CREATE ON SCHEMA public TO "+role); err != nil {
		return fmt.Errorf("grant schema create: %w", err)
	}

	return nil
}

func dbSetupFailed(err error) service.Result {
	return service.Result{Msg: fmt.Sprintf("❌ DB setup failed: %v", err)}
}

func connectFailed(err error) service.Result {
	return service.Result{Msg: fmt.Sprintf("❌ Could not connect to remote DB: %v", err)}
}

var _ service.DBProvisioner = (*Provisioner)(nil)
