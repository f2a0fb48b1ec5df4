// Package service runs the provisioning pipeline behind the wizard's final
// step and declares the contracts its collaborators implement. Progress is
// streamed as human-readable lines; the stream always terminates with
// DoneSentinel no matter how the pipeline ends.
package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/code-merge/accompany/platform/go/credentials"
)

// DoneSentinel is the final line of every provisioning stream.
const DoneSentinel = "done"

// Provisioning modes selected at the database step.
const (
	ModeStandard = "standard"
	ModeCustom   = "custom"
)

// Request carries everything the pipeline needs, assembled from the wizard
// session when the stream starts. DBName is the standard-mode target; Custom
// holds the connection details when Mode is ModeCustom.
type Request struct {
	Mode          string
	DBName        string
	Custom        CustomDBRequest
	AdminEmail    string
	AdminPassword string
	CompanyName   string
	Industry      string
	Modules       []string
}

// Service orchestrates provisioning: database first, then schema and seed
// operations through a SchemaOps opened for the resulting credentials.
type Service struct {
	deps   ProvisioningDeps
	logger *zap.Logger
}

// New constructs a Service with required collaborators.
func New(deps ProvisioningDeps, logger *zap.Logger) *Service {
	if deps.DB == nil {
		panic("service requires a database provisioner")
	}
	if deps.SchemaOps == nil {
		panic("service requires a schema ops factory")
	}
	if logger == nil {
		panic("service requires logger")
	}
	return &Service{deps: deps, logger: logger}
}

// Provision runs the pipeline and returns the progress stream. The channel is
// closed after DoneSentinel. Cancelling ctx stops delivery between steps; a
// step already dispatched runs to completion so an abandoned stream cannot
// leave the database half set up.
func (s *Service) Provision(ctx context.Context, req Request) <-chan string {
	out := make(chan string)
	go s.run(ctx, req, out)
	return out
}

func (s *Service) run(ctx context.Context, req Request, out chan<- string) {
	defer close(out)

	var ops SchemaOps
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("provisioning panicked", zap.Any("panic", r), zap.Stack("stack"))
			if s.send(ctx, out, "❌ Aborting: internal error") {
				s.send(ctx, out, DoneSentinel)
			}
		}
		if ops != nil {
			ops.Close()
		}
	}()

	dbName := strings.TrimSpace(req.DBName)
	email := strings.TrimSpace(req.AdminEmail)
	password := strings.TrimSpace(req.AdminPassword)
	company := strings.TrimSpace(req.CompanyName)
	industry := strings.TrimSpace(req.Industry)

	// steps keep running if the stream consumer goes away; only delivery
	// watches ctx
	opCtx := context.WithoutCancel(ctx)

	if !s.send(ctx, out, "🔧 Starting site provisioning...") {
		return
	}

	if !s.send(ctx, out, "📦 Setting up database...") {
		return
	}
	var (
		rec credentials.Record
		res Result
	)
	if req.Mode == ModeCustom {
		rec, res = s.deps.DB.ConnectCustom(opCtx, req.Custom)
	} else {
		rec, res = s.deps.DB.CreateStandard(opCtx, dbName)
	}
	if !s.send(ctx, out, res.Msg) {
		return
	}
	if !res.OK {
		s.abort(ctx, out, "❌ Aborting: DB provisioning failed")
		return
	}

	if !s.send(ctx, out, "👤 Creating system admin...") {
		return
	}
	if email == "" || password == "" {
		s.abort(ctx, out, "❌ Aborting: Admin credentials missing")
		return
	}

	opened, err := s.deps.SchemaOps.ForRecord(opCtx, rec)
	if err != nil {
		s.logger.Error("open schema ops for provisioned database",
			zap.String("db_name", rec.DBName), zap.Error(err))
		if !s.send(ctx, out, fmt.Sprintf("❌ Failed to create admin: %v", err)) {
			return
		}
		s.abort(ctx, out, "❌ Aborting: Admin setup failed")
		return
	}
	ops = opened

	res = ops.CreateAdminUser(opCtx, email, password)
	if !s.send(ctx, out, res.Msg) {
		return
	}
	if !res.OK {
		s.abort(ctx, out, "❌ Aborting: Admin setup failed")
		return
	}

	if !s.send(ctx, out, "🏢 Creating company record...") {
		return
	}
	if company == "" {
		s.abort(ctx, out, "❌ Aborting: Company name missing")
		return
	}

	res = ops.CreateCompany(opCtx, company, industry)
	if !s.send(ctx, out, res.Msg) {
		return
	}
	if !res.OK {
		s.abort(ctx, out, "❌ Aborting: Company setup failed")
		return
	}

	if !s.send(ctx, out, "🌐 Seeding languages...") {
		return
	}
	msg := ops.SeedLanguages(opCtx)
	if !s.send(ctx, out, msg) {
		return
	}
	if strings.HasPrefix(msg, "❌") {
		s.abort(ctx, out, "❌ Aborting: Language seeding failed")
		return
	}

	if !s.send(ctx, out, "📦 Enabling modules...") {
		return
	}
	msg = ops.SeedModules(opCtx, req.Modules)
	if !s.send(ctx, out, msg) {
		return
	}
	if strings.HasPrefix(msg, "❌") {
		s.abort(ctx, out, "❌ Aborting: Module seeding failed")
		return
	}

	if !s.send(ctx, out, "✅ Site provisioning complete") {
		return
	}
	s.send(ctx, out, DoneSentinel)
}

// send delivers one line unless the consumer is gone.
func (s *Service) send(ctx context.Context, out chan<- string, msg string) bool {
	select {
	case out <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

// abort emits the abort notice followed by the sentinel.
func (s *Service) abort(ctx context.Context, out chan<- string, msg string) {
	if !s.send(ctx, out, msg) {
		return
	}
	s.send(ctx, out, DoneSentinel)
}
