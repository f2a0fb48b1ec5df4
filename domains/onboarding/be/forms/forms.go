// Package forms defines the typed wizard forms and their validation rules.
// Each form validates the way the wizard renders: at most one message per
// field, produced by the first rule that fails.
package forms

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/code-merge/accompany/domains/onboarding/be/reference"
)

// Field identifies a form input. Values match the JSON keys the wizard submits.
type Field string

const (
	FieldDBName          Field = "db_name"
	FieldHost            Field = "host"
	FieldPort            Field = "port"
	FieldUser            Field = "user"
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirm_password"
	FieldSSLCert         Field = "ssl_cert"
	FieldFullName        Field = "full_name"
	FieldEmail           Field = "email"
	FieldProfilePicture  Field = "profile_picture"
	FieldCompanyName     Field = "company_name"
	FieldIndustry        Field = "industry"
	FieldCompanyLogo     Field = "company_logo"
	FieldCountryCode     Field = "country_code"
	FieldTimezone        Field = "timezone"
	FieldCurrency        Field = "currency"
	FieldLanguage        Field = "language"
	FieldTheme           Field = "theme"
)

// Errors maps fields to the message of the first rule that rejected them.
type Errors map[Field]string

func (e Errors) add(field Field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Messages shared across forms.
const (
	msgRequired     = "This field is required."
	msgInvalidEmail = "Enter a valid email address."
)

const certExt = ".pem"

var dbNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Allowed upload extensions, matched case-insensitively.
var (
	pictureExts = map[string]struct{}{".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}}
	logoExts    = map[string]struct{}{".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".svg": {}}
)

func hasAllowedExt(name string, allowed map[string]struct{}) bool {
	_, ok := allowed[strings.ToLower(filepath.Ext(name))]
	return ok
}

// StandardDB names the database the wizard creates on the local server.
type StandardDB struct {
	DBName string `json:"db_name"`
}

func (f StandardDB) Validate() Errors {
	errs := Errors{}
	if !dbNamePattern.MatchString(strings.TrimSpace(f.DBName)) {
		errs.add(FieldDBName, "Only letters, numbers, and underscore allowed.")
	}
	return errs
}

// CustomDB describes an existing database the wizard connects to instead of
// creating one. CertPEM carries the uploaded certificate body on submission
// and is stripped before the form is stored.
type CustomDB struct {
	DBName   string `json:"db_name"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	SSL      bool   `json:"ssl"`
	SSLCert  string `json:"ssl_cert,omitempty"`
	CertPEM  string `json:"ssl_cert_pem,omitempty"`
}

func (f CustomDB) Validate() Errors {
	errs := Errors{}

	for field, value := range map[Field]string{
		FieldDBName:   f.DBName,
		FieldHost:     f.Host,
		FieldUser:     f.User,
		FieldPassword: f.Password,
	} {
		if strings.TrimSpace(value) == "" {
			errs.add(field, msgRequired)
		}
	}

	if f.Port < 1 || f.Port > 65535 {
		errs.add(FieldPort, "Enter a valid port.")
	}

	if f.SSL {
		switch {
		case strings.TrimSpace(f.SSLCert) == "":
			errs.add(FieldSSLCert, "When SSL is on, upload a .pem file.")
		case strings.ToLower(filepath.Ext(f.SSLCert)) != certExt:
			errs.add(FieldSSLCert, "Only .pem files allowed.")
		}
	}

	return errs
}

// Redacted returns a copy without the certificate upload, which lives on disk
// once the submission is accepted.
func (f CustomDB) Redacted() CustomDB {
	f.SSLCert = ""
	f.CertPEM = ""
	return f
}

// Admin captures the first system administrator. The password pair is
// validated here but never stored or echoed back.
type Admin struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Password        string `json:"password,omitempty"`
	ConfirmPassword string `json:"confirm_password,omitempty"`
	ProfilePicture  string `json:"profile_picture,omitempty"`
}

func (f Admin) Validate() Errors {
	errs := Errors{}

	if strings.TrimSpace(f.FullName) == "" {
		errs.add(FieldFullName, msgRequired)
	}

	email := strings.TrimSpace(f.Email)
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		errs.add(FieldEmail, msgInvalidEmail)
	}

	if utf8.RuneCountInString(f.Password) < 8 {
		errs.add(FieldPassword, "Password must be at least 8 characters.")
	}
	if f.Password != f.ConfirmPassword {
		errs.add(FieldConfirmPassword, "Passwords do not match.")
	}

	if f.ProfilePicture != "" && !hasAllowedExt(f.ProfilePicture, pictureExts) {
		errs.add(FieldProfilePicture, "Allowed: .jpg .jpeg .png .gif")
	}

	return errs
}

// Redacted returns the copy that is stored and re-rendered: name and email
// only.
func (f Admin) Redacted() Admin {
	f.Password = ""
	f.ConfirmPassword = ""
	f.ProfilePicture = ""
	return f
}

// Company captures the company profile step.
type Company struct {
	CompanyName string `json:"company_name"`
	Industry    string `json:"industry"`
	CompanyLogo string `json:"company_logo,omitempty"`
}

func (f Company) Validate() Errors {
	errs := Errors{}

	if strings.TrimSpace(f.CompanyName) == "" {
		errs.add(FieldCompanyName, msgRequired)
	}
	if strings.TrimSpace(f.Industry) == "" {
		errs.add(FieldIndustry, msgRequired)
	}

	if f.CompanyLogo != "" && !hasAllowedExt(f.CompanyLogo, logoExts) {
		errs.add(FieldCompanyLogo, "Allowed: .jpg .jpeg .png .gif .svg")
	}

	return errs
}

// Redacted returns a copy without the logo upload name.
func (f Company) Redacted() Company {
	f.CompanyLogo = ""
	return f
}

// System captures locale, appearance and module selection.
type System struct {
	CountryCode string   `json:"country_code"`
	Timezone    string   `json:"timezone"`
	Currency    string   `json:"currency"`
	Language    string   `json:"language"`
	Theme       string   `json:"theme"`
	Modules     []string `json:"modules"`
}

func (f System) Validate() Errors {
	errs := Errors{}

	for field, value := range map[Field]string{
		FieldCountryCode: f.CountryCode,
		FieldTimezone:    f.Timezone,
		FieldCurrency:    f.Currency,
	} {
		if strings.TrimSpace(value) == "" {
			errs.add(field, msgRequired)
		}
	}

	if !reference.Contains(reference.Languages, f.Language) {
		errs.add(FieldLanguage, "Select a valid language.")
	}
	if !reference.Contains(reference.Themes, f.Theme) {
		errs.add(FieldTheme, "Select a valid theme.")
	}

	return errs
}
