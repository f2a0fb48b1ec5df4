package forms

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStandardDBValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		dbName      string
		expectError string
	}{
		{
			name:   "simple name",
			dbName: "accompany_prod",
		},
		{
			name:   "padded name is trimmed before matching",
			dbName: "  tenant1  ",
		},
		{
			name:        "blank",
			dbName:      "",
			expectError: "Only letters, numbers, and underscore allowed.",
		},
		{
			name:        "spaces inside",
			dbName:      "my db",
			expectError: "Only letters, numbers, and underscore allowed.",
		},
		{
			name:        "hyphen",
			dbName:      "my-db",
			expectError: "Only letters, numbers, and underscore allowed.",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			errs := StandardDB{DBName: tt.dbName}.Validate()
			if tt.expectError == "" {
				require.Empty(t, errs)
				return
			}

			require.Equal(t, Errors{FieldDBName: tt.expectError}, errs)
		})
	}
}

func TestCustomDBValidate(t *testing.T) {
	t.Parallel()

	valid := CustomDB{
		DBName:   "remote",
		Host:     "db.internal",
		Port:     5432,
		User:     "svc",
		Password: "secret",
	}

	tests := []struct {
		name   string
		mutate func(f *CustomDB)
		expect Errors
	}{
		{
			name:   "valid without ssl",
			mutate: func(f *CustomDB) {},
			expect: Errors{},
		},
		{
			name: "valid with pem upload",
			mutate: func(f *CustomDB) {
				f.SSL = true
				f.SSLCert = "server.pem"
				f.CertPEM = "-----BEGIN CERTIFICATE-----"
			},
			expect: Errors{},
		},
		{
			name:   "blank required fields",
			mutate: func(f *CustomDB) { f.Host = " "; f.User = "" },
			expect: Errors{
				FieldHost: "This field is required.",
				FieldUser: "This field is required.",
			},
		},
		{
			name:   "port zero",
			mutate: func(f *CustomDB) { f.Port = 0 },
			expect: Errors{FieldPort: "Enter a valid port."},
		},
		{
			name:   "port above range",
			mutate: func(f *CustomDB) { f.Port = 70000 },
			expect: Errors{FieldPort: "Enter a valid port."},
		},
		{
			name:   "ssl without certificate",
			mutate: func(f *CustomDB) { f.SSL = true },
			expect: Errors{FieldSSLCert: "When SSL is on, upload a .pem file."},
		},
		{
			name:   "ssl with wrong extension",
			mutate: func(f *CustomDB) { f.SSL = true; f.SSLCert = "server.crt" },
			expect: Errors{FieldSSLCert: "Only .pem files allowed."},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			form := valid
			tt.mutate(&form)
			require.Equal(t, tt.expect, form.Validate())
		})
	}
}

func TestCustomDBRedacted(t *testing.T) {
	t.Parallel()

	form := CustomDB{
		DBName:   "remote",
		Host:     "db.internal",
		Port:     5432,
		User:     "svc",
		Password: "secret",
		SSL:      true,
		SSLCert:  "server.pem",
		CertPEM:  "-----BEGIN CERTIFICATE-----",
	}

	redacted := form.Redacted()
	require.Empty(t, redacted.SSLCert)
	require.Empty(t, redacted.CertPEM)
	require.Equal(t, form.DBName, redacted.DBName)
	require.Equal(t, form.Password, redacted.Password)
	require.True(t, redacted.SSL)
}

func TestAdminValidate(t *testing.T) {
	t.Parallel()

	valid := Admin{
		FullName:        "Ada Lovelace",
		Email:           "ada@example.com",
		Password:        "correct horse",
		ConfirmPassword: "correct horse",
	}

	tests := []struct {
		name   string
		mutate func(f *Admin)
		expect Errors
	}{
		{
			name:   "valid",
			mutate: func(f *Admin) {},
			expect: Errors{},
		},
		{
			name:   "uppercase picture extension accepted",
			mutate: func(f *Admin) { f.ProfilePicture = "me.PNG" },
			expect: Errors{},
		},
		{
			name:   "blank name",
			mutate: func(f *Admin) { f.FullName = "  " },
			expect: Errors{FieldFullName: "This field is required."},
		},
		{
			name:   "email without at sign",
			mutate: func(f *Admin) { f.Email = "ada.example.com" },
			expect: Errors{FieldEmail: "Enter a valid email address."},
		},
		{
			name:   "email without dot",
			mutate: func(f *Admin) { f.Email = "ada@example" },
			expect: Errors{FieldEmail: "Enter a valid email address."},
		},
		{
			name: "short password",
			mutate: func(f *Admin) {
				f.Password = "short"
				f.ConfirmPassword = "short"
			},
			expect: Errors{FieldPassword: "Password must be at least 8 characters."},
		},
		{
			name:   "password mismatch",
			mutate: func(f *Admin) { f.ConfirmPassword = "something else" },
			expect: Errors{FieldConfirmPassword: "Passwords do not match."},
		},
		{
			name:   "disallowed picture extension",
			mutate: func(f *Admin) { f.ProfilePicture = "me.bmp" },
			expect: Errors{FieldProfilePicture: "Allowed: .jpg .jpeg .png .gif"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			form := valid
			tt.mutate(&form)
			require.Equal(t, tt.expect, form.Validate())
		})
	}
}

func TestAdminPasswordCountsRunesNotBytes(t *testing.T) {
	t.Parallel()

	form := Admin{
		FullName:        "Ada Lovelace",
		Email:           "ada@example.com",
		Password:        "пароль78",
		ConfirmPassword: "пароль78",
	}

	require.Empty(t, form.Validate())
}

func TestAdminRedacted(t *testing.T) {
	t.Parallel()

	form := Admin{
		FullName:        "Ada Lovelace",
		Email:           "ada@example.com",
		Password:        "correct horse",
		ConfirmPassword: "correct horse",
		ProfilePicture:  "me.png",
	}

	redacted := form.Redacted()
	require.Equal(t, "Ada Lovelace", redacted.FullName)
	require.Equal(t, "ada@example.com", redacted.Email)
	require.Empty(t, redacted.Password)
	require.Empty(t, redacted.ConfirmPassword)
	require.Empty(t, redacted.ProfilePicture)
}

func TestCompanyValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		form   Company
		expect Errors
	}{
		{
			name: "valid",
			form: Company{CompanyName: "Globex", Industry: "Manufacturing"},
			expect: Errors{},
		},
		{
			name: "svg logo allowed",
			form: Company{CompanyName: "Globex", Industry: "Manufacturing", CompanyLogo: "logo.svg"},
			expect: Errors{},
		},
		{
			name: "blank fields",
			form: Company{CompanyName: " ", Industry: ""},
			expect: Errors{
				FieldCompanyName: "This field is required.",
				FieldIndustry:    "This field is required.",
			},
		},
		{
			name: "disallowed logo extension",
			form: Company{CompanyName: "Globex", Industry: "Manufacturing", CompanyLogo: "logo.pdf"},
			expect: Errors{FieldCompanyLogo: "Allowed: .jpg .jpeg .png .gif .svg"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.expect, tt.form.Validate())
		})
	}
}

func TestSystemValidate(t *testing.T) {
	t.Parallel()

	valid := System{
		CountryCode: "DE",
		Timezone:    "Europe/Berlin",
		Currency:    "EUR",
		Language:    "de",
		Theme:       "dark",
		Modules:     []string{"CRM", "HR"},
	}

	tests := []struct {
		name   string
		mutate func(f *System)
		expect Errors
	}{
		{
			name:   "valid",
			mutate: func(f *System) {},
			expect: Errors{},
		},
		{
			name:   "no modules selected is allowed",
			mutate: func(f *System) { f.Modules = nil },
			expect: Errors{},
		},
		{
			name:   "blank country",
			mutate: func(f *System) { f.CountryCode = "" },
			expect: Errors{FieldCountryCode: "This field is required."},
		},
		{
			name:   "blank timezone",
			mutate: func(f *System) { f.Timezone = " " },
			expect: Errors{FieldTimezone: "This field is required."},
		},
		{
			name:   "unknown language",
			mutate: func(f *System) { f.Language = "xx" },
			expect: Errors{FieldLanguage: "Select a valid language."},
		},
		{
			name:   "unknown theme",
			mutate: func(f *System) { f.Theme = "neon" },
			expect: Errors{FieldTheme: "Select a valid theme."},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			form := valid
			tt.mutate(&form)
			require.Equal(t, tt.expect, form.Validate())
		})
	}
}
