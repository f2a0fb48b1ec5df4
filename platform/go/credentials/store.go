package credentials

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-ini/ini"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store errors surfaced to callers.
var (
	ErrInvalidProfile  = errors.New("profile name is required")
	ErrProfileNotFound = errors.New("profile not found")
)

const (
	dirPerm  = 0o700
	filePerm = 0o600

	certsSubdir = "certs"
	recordExt   = ".ini"
	certExt     = ".pem"

	sectionName = "database"
)

// truthy values accepted when coercing the stored ssl flag.
var trueValues = map[string]struct{}{"1": {}, "true": {}, "yes": {}}

// Record is one persisted connection-credential profile. User/Password are
// scoped to exactly one database, never the superuser identity.
type Record struct {
	DBName   string
	User     string
	Password string
	Host     string
	Port     int
	SSL      bool
	SSLCert  string // absolute certificate path, set only when TLS material was persisted
}

// Store persists credential records as INI profiles under a private base
// directory. The base path is injected so tests and deployments can relocate
// it; DefaultDir resolves the conventional per-user location.
type Store struct {
	base   string
	logger *zap.Logger
}

// DefaultDir returns the conventional store location, ~/.accompany.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".accompany"), nil
}

// NewStore builds a Store rooted at base.
func NewStore(base string, logger *zap.Logger) *Store {
	if base == "" {
		panic("credentials store requires a base directory")
	}
	if logger == nil {
		panic("credentials store requires a logger")
	}
	return &Store{base: base, logger: logger}
}

// Dir returns the store's base directory.
func (s *Store) Dir() string {
	return s.base
}

// CertsDir returns the private directory holding persisted certificates.
func (s *Store) CertsDir() string {
	return filepath.Join(s.base, certsSubdir)
}

// Write persists rec under the given profile, overwriting any prior record.
// When certPEM is non-empty the bytes are stored as a uniquely named file in
// the certs directory and the record's SSLCert is pointed at it. Permission
// tightening failures are logged, not fatal.
func (s *Store) Write(profile string, rec Record, certPEM []byte) error {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return ErrInvalidProfile
	}

	if err := s.ensureDirs(); err != nil {
		return err
	}

	if len(certPEM) > 0 {
		certPath, err := s.SaveCert(profile, certPEM)
		if err != nil {
			return err
		}
		rec.SSLCert = certPath
	}

	file := ini.Empty()
	section := file.Section(sectionName)
	section.Key("db_name").SetValue(rec.DBName)
	section.Key("user").SetValue(rec.User)
	section.Key("password").SetValue(rec.Password)
	section.Key("host").SetValue(rec.Host)
	section.Key("port").SetValue(strconv.Itoa(rec.Port))
	section.Key("ssl").SetValue(strconv.FormatBool(rec.SSL))
	if rec.SSLCert != "" {
		section.Key("ssl_cert").SetValue(rec.SSLCert)
	}

	path := s.profilePath(profile)
	if err := file.SaveTo(path); err != nil {
		return fmt.Errorf("write profile %q: %w", profile, err)
	}
	s.tighten(path)

	return nil
}

// Read loads the record stored under profile, coercing port to an integer and
// ssl to a boolean (accepting 1/true/yes, case-insensitive).
func (s *Store) Read(profile string) (Record, error) {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return Record{}, ErrInvalidProfile
	}

	path := s.profilePath(profile)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, ErrProfileNotFound
		}
		return Record{}, fmt.Errorf("stat profile %q: %w", profile, err)
	}

	file, err := ini.Load(path)
	if err != nil {
		return Record{}, fmt.Errorf("load profile %q: %w", profile, err)
	}

	section := file.Section(sectionName)
	rec := Record{
		DBName:   section.Key("db_name").String(),
		User:     section.Key("user").String(),
		Password: section.Key("password").String(),
		Host:     section.Key("host").String(),
		SSLCert:  section.Key("ssl_cert").String(),
		SSL:      parseTruthy(section.Key("ssl").String()),
	}

	if raw := section.Key("port").String(); raw != "" {
		port, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return Record{}, fmt.Errorf("parse port for profile %q: %w", profile, err)
		}
		rec.Port = port
	}

	return rec, nil
}

// ListProfiles returns the stored profile names, sorted. A missing base
// directory is not an error; it simply means nothing has been stored yet.
func (s *Store) ListProfiles() ([]string, error) {
	entries, err := os.ReadDir(s.base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	profiles := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, recordExt) {
			continue
		}
		profiles = append(profiles, strings.TrimSuffix(name, recordExt))
	}
	sort.Strings(profiles)

	return profiles, nil
}

// SaveCert stores certificate bytes in the certs directory under a unique
// name derived from the profile, returning the absolute path.
func (s *Store) SaveCert(profile string, pem []byte) (string, error) {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return "", ErrInvalidProfile
	}

	if err := s.ensureDirs(); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s-%s%s", profile, strings.ReplaceAll(uuid.NewString(), "-", ""), certExt)
	path := filepath.Join(s.CertsDir(), name)
	if err := os.WriteFile(path, pem, filePerm); err != nil {
		return "", fmt.Errorf("write certificate for profile %q: %w", profile, err)
	}
	s.tighten(path)

	return path, nil
}

func (s *Store) ensureDirs() error {
	if err := os.MkdirAll(s.base, dirPerm); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	if err := os.MkdirAll(s.CertsDir(), dirPerm); err != nil {
		return fmt.Errorf("create certs dir: %w", err)
	}
	return nil
}

func (s *Store) profilePath(profile string) string {
	return filepath.Join(s.base, profile+recordExt)
}

// tighten restricts the file to owner read/write. Failures are tolerated so a
// restrictive filesystem cannot block provisioning.
func (s *Store) tighten(path string) {
	if err := os.Chmod(path, filePerm); err != nil {
		s.logger.Warn("restrict file permissions", zap.String("path", path), zap.Error(err))
	}
}

func parseTruthy(raw string) bool {
	_, ok := trueValues[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}
