package provisioncmd

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/code-merge/accompany/domains/onboarding/be/forms"
	"github.com/code-merge/accompany/domains/onboarding/be/provisioning"
	"github.com/code-merge/accompany/domains/onboarding/be/reference"
	"github.com/code-merge/accompany/domains/onboarding/be/service"
	"github.com/code-merge/accompany/platform/go/credentials"
	platformlogging "github.com/code-merge/accompany/platform/go/logging"
	"github.com/code-merge/accompany/platform/go/persistence"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// Command runs the provisioning pipeline headless: the same steps the web
// wizard streams, printed line by line. The process exits non-zero when the
// run aborts.
func Command() *cobra.Command {
	var (
		mode   string
		dbName string

		host       string
		port       int
		user       string
		dbPassword string
		ssl        bool
		sslCert    string

		adminEmail    string
		adminPassword string
		companyName   string
		industry      string
		modules       []string

		superuser         string
		superuserPassword string
		postgresHost      string
		postgresPort      int

		home     string
		logLevel string
	)

	c := &cobra.Command{
		Use:   "provision",
		Short: "Provision a site without the web wizard",
		Long:  "Runs database setup, system admin creation, company record and seed data in one pass, printing each step's outcome.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if mode != service.ModeStandard && mode != service.ModeCustom {
				return fmt.Errorf("invalid --mode %q (use %s or %s)", mode, service.ModeStandard, service.ModeCustom)
			}

			if !strings.Contains(adminEmail, "@") || !strings.Contains(adminEmail, ".") {
				return errors.New("enter a valid --admin-email")
			}

			if adminPassword == "" {
				pw, err := promptAdminPassword(cmd)
				if err != nil {
					return err
				}
				adminPassword = pw
			}
			if utf8.RuneCountInString(adminPassword) < 8 {
				return errors.New("admin password must be at least 8 characters")
			}

			var errs forms.Errors
			if mode == service.ModeCustom {
				errs = forms.CustomDB{
					DBName:   dbName,
					Host:     host,
					Port:     port,
					User:     user,
					Password: dbPassword,
					SSL:      ssl,
					SSLCert:  sslCert,
				}.Validate()
			} else {
				errs = forms.StandardDB{DBName: dbName}.Validate()
			}
			if len(errs) > 0 {
				return flagErrors(errs)
			}

			logger, err := platformlogging.NewLogger(platformlogging.Config{
				Component: "cli",
				Level:     logLevel,
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			if home == "" {
				home, err = credentials.DefaultDir()
				if err != nil {
					return fmt.Errorf("resolve credentials dir: %w", err)
				}
			}
			credStore := credentials.NewStore(home, logger)

			provisioner := provisioning.NewProvisioner(provisioning.ProvisionerConfig{
				Admin: persistence.AdminConfig{
					Superuser: superuser,
					Password:  superuserPassword,
					Host:      postgresHost,
					Port:      postgresPort,
				},
				Store:  credStore,
				Logger: logger,
			})

			pipeline := service.New(service.ProvisioningDeps{
				DB:        provisioner,
				SchemaOps: provisioning.NewPoolFactory(logger),
			}, logger)

			req := service.Request{
				Mode:          mode,
				AdminEmail:    adminEmail,
				AdminPassword: adminPassword,
				CompanyName:   companyName,
				Industry:      industry,
				Modules:       modules,
			}
			if mode == service.ModeCustom {
				req.Custom = service.CustomDBRequest{
					DBName:   dbName,
					Host:     host,
					Port:     port,
					User:     user,
					Password: dbPassword,
					SSL:      ssl,
					CertPath: sslCert,
				}
			} else {
				req.DBName = dbName
			}

			aborted := false
			for msg := range pipeline.Provision(cmd.Context(), req) {
				if msg == service.DoneSentinel {
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				if strings.HasPrefix(msg, "❌ Aborting:") {
					aborted = true
				}
			}

			if aborted {
				return errors.New("provisioning aborted")
			}
			return nil
		},
	}

	c.Flags().StringVar(&mode, "mode", service.ModeStandard, "database setup mode: standard creates a database, custom connects to one")
	c.Flags().StringVar(&dbName, "db-name", "", "database name")

	c.Flags().StringVar(&host, "host", "", "custom mode: database host")
	c.Flags().IntVar(&port, "port", 5432, "custom mode: database port")
	c.Flags().StringVar(&user, "user", "", "custom mode: database user")
	c.Flags().StringVar(&dbPassword, "db-password", "", "custom mode: database password")
	c.Flags().BoolVar(&ssl, "ssl", false, "custom mode: connect with TLS")
	c.Flags().StringVar(&sslCert, "ssl-cert", "", "custom mode: path to the CA certificate (.pem)")

	c.Flags().StringVar(&adminEmail, "admin-email", "", "system admin email")
	c.Flags().StringVar(&adminPassword, "admin-password", "", "system admin password (prompted when omitted)")
	c.Flags().StringVar(&companyName, "company", "", "company name")
	c.Flags().StringVar(&industry, "industry", "", "company industry")
	c.Flags().StringSliceVar(&modules, "modules", reference.ModuleList, "modules to enable")

	c.Flags().StringVar(&superuser, "superuser", "postgres", "standard mode: Postgres superuser")
	c.Flags().StringVar(&superuserPassword, "superuser-password", "postgres", "standard mode: Postgres superuser password")
	c.Flags().StringVar(&postgresHost, "postgres-host", "localhost", "standard mode: Postgres host")
	c.Flags().IntVar(&postgresPort, "postgres-port", 5432, "standard mode: Postgres port")

	c.Flags().StringVar(&home, "home", "", "credentials directory (default ~/.accompany)")
	c.Flags().StringVar(&logLevel, "log-level", "error", "log level for diagnostics")

	_ = c.MarkFlagRequired("db-name")
	_ = c.MarkFlagRequired("admin-email")
	_ = c.MarkFlagRequired("company")
	_ = c.MarkFlagRequired("industry")

	return c
}

// promptAdminPassword reads the admin password twice from the terminal
// without echo.
func promptAdminPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Admin password: ")
	first, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Confirm password: ")
	second, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func flagErrors(errs forms.Errors) error {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, string(field))
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("invalid database settings:")
	for _, field := range fields {
		b.WriteString("\n  " + field + ": " + errs[forms.Field(field)])
	}
	return errors.New(b.String())
}
