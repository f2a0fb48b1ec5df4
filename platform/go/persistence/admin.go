package persistence

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
)

// AdminConfig describes the pre-configured superuser connection used for
// provisioning. It never leaves the process; scoped per-database credentials
// are what gets persisted.
type AdminConfig struct {
	Superuser string
	Password  string
	Host      string
	Port      int
}

// MaintenanceURL returns the conn string for the "postgres" maintenance
// database, where CREATE DATABASE / CREATE ROLE statements run.
func (c AdminConfig) MaintenanceURL() string {
	return c.DatabaseURL("postgres")
}

// DatabaseURL returns the superuser conn string for the named database.
func (c AdminConfig) DatabaseURL(dbName string) string {
	return buildURL(c.Superuser, c.Password, c.Host, c.Port, dbName, url.Values{"sslmode": {"disable"}})
}

// TargetURL builds the conn string for a provisioned or attached database.
// TLS connections verify the server against the stored root certificate.
func TargetURL(user, password, host string, port int, dbName string, ssl bool, sslCert string) string {
	query := url.Values{}
	if ssl {
		query.Set("sslmode", "verify-full")
		if sslCert != "" {
			query.Set("sslrootcert", sslCert)
		}
	} else {
		query.Set("sslmode", "disable")
	}
	return buildURL(user, password, host, port, dbName, query)
}

func buildURL(user, password, host string, port int, dbName string, query url.Values) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     net.JoinHostPort(host, strconv.Itoa(port)),
		Path:     "/" + dbName,
		RawQuery: query.Encode(),
	}
	return u.String()
}

// CheckReachable dials the conn string with a single connection, pings, and
// closes it. Used for readiness probes and for validating operator-supplied
// credentials without keeping a handle open.
func CheckReachable(ctx context.Context, connString string) error {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(ctx) // nolint:errcheck

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
