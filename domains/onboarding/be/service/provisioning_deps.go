package service

import (
	"context"

	"github.com/code-merge/accompany/platform/go/credentials"
)

// Result is the outcome of one provisioning step. Msg is the line streamed to
// the wizard, success or not.
type Result struct {
	OK  bool
	Msg string
}

// DBProvisioner sets up the tenant database: create-and-scope for standard
// mode, connect-and-verify for custom mode. On failure the Result carries the
// reason and the returned record is zero.
type DBProvisioner interface {
	CreateStandard(ctx context.Context, dbName string) (credentials.Record, Result)
	ConnectCustom(ctx context.Context, req CustomDBRequest) (credentials.Record, Result)
}

// CustomDBRequest carries the connection details collected in step three plus
// the certificate retained on disk when SSL is requested.
type CustomDBRequest struct {
	DBName   string
	Host     string
	Port     int
	User     string
	Password string
	SSL      bool
	CertPath string
}

// SchemaOps runs schema and seed operations against the provisioned database.
// The two seed operations report through their message alone; a failure
// message starts with the abort marker.
type SchemaOps interface {
	CreateAdminUser(ctx context.Context, email, password string) Result
	CreateCompany(ctx context.Context, name, industry string) Result
	SeedLanguages(ctx context.Context) string
	SeedModules(ctx context.Context, names []string) string
	Close()
}

// SchemaOpsFactory opens a SchemaOps for the record produced by the database
// step. Opening is deferred until after that step succeeds so connection
// problems surface as step failures inside the stream.
type SchemaOpsFactory interface {
	ForRecord(ctx context.Context, rec credentials.Record) (SchemaOps, error)
}

// ProvisioningDeps groups the pipeline's collaborators.
type ProvisioningDeps struct {
	DB        DBProvisioner
	SchemaOps SchemaOpsFactory
}
