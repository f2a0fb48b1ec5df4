// Package handler exposes the onboarding wizard over HTTP: one JSON endpoint
// per step plus the provisioning event stream. Wizard state lives in the
// session handle injected by session.Middleware, so every endpoint starts by
// pulling that handle off the request.
package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/code-merge/accompany/domains/onboarding/be/forms"
	"github.com/code-merge/accompany/domains/onboarding/be/reference"
	"github.com/code-merge/accompany/domains/onboarding/be/service"
	"github.com/code-merge/accompany/domains/onboarding/be/session"
	"github.com/code-merge/accompany/platform/go/credentials"
	platformlogging "github.com/code-merge/accompany/platform/go/logging"
)

const (
	appName    = "Accompany"
	appTagline = "Your business companion"
)

// Paths handed back in "next" fields after a successful step submission.
const (
	pathAdminSetup   = "/admin-user-setup"
	pathCompanySetup = "/company-setup"
	pathSystemSetup  = "/system-setup"
	pathFinish       = "/finish"
)

// Pipeline runs site provisioning and streams progress lines until the done
// sentinel.
type Pipeline interface {
	Provision(ctx context.Context, req service.Request) <-chan string
}

// Handler serves the wizard endpoints.
type Handler struct {
	pipeline Pipeline
	store    *credentials.Store
	logger   *zap.Logger
}

// New builds the wizard handler. All dependencies are required.
func New(pipeline Pipeline, store *credentials.Store, logger *zap.Logger) *Handler {
	if pipeline == nil {
		panic("handler: pipeline is required")
	}
	if store == nil {
		panic("handler: credentials store is required")
	}
	if logger == nil {
		panic("handler: logger is required")
	}
	return &Handler{pipeline: pipeline, store: store, logger: logger}
}

// Routes returns the step endpoints. FinishStream is not registered here so
// the caller can mount it outside any request-timeout middleware.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.welcome)
	r.Get("/licence", h.licence)
	r.Get("/db-setup", h.dbSetup)
	r.Post("/db-setup/standard", h.dbSetupStandard)
	r.Post("/db-setup/custom", h.dbSetupCustom)
	r.Get("/admin-user-setup", h.adminSetup)
	r.Post("/admin-user-setup", h.adminSetupSubmit)
	r.Get("/company-setup", h.companySetup)
	r.Post("/company-setup", h.companySetupSubmit)
	r.Get("/system-setup", h.systemSetup)
	r.Post("/system-setup", h.systemSetupSubmit)
	r.Get("/finish", h.finish)
	return r
}

type welcomeResponse struct {
	App         string           `json:"app"`
	Tagline     string           `json:"tagline"`
	Steps       []reference.Step `json:"steps"`
	CurrentStep int              `json:"current_step"`
}

func (h *Handler) welcome(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, welcomeResponse{
		App:         appName,
		Tagline:     appTagline,
		Steps:       reference.Steps,
		CurrentStep: 1,
	})
}

type licenceResponse struct {
	Accepted    bool   `json:"accepted"`
	Licence     string `json:"licence"`
	CurrentStep int    `json:"current_step"`
}

// licence serves the licence text. An "accept" query parameter records the
// visitor's decision; any value other than "true" revokes acceptance.
func (h *Handler) licence(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.sessionHandle(w, r)
	if !ok {
		return
	}

	st := handle.State()
	if r.URL.Query().Has("accept") {
		accepted := strings.EqualFold(r.URL.Query().Get("accept"), "true")
		st = handle.Update(func(s *session.State) {
			s.LicenceAccepted = accepted
		})
	}

	h.respondJSON(w, r, http.StatusOK, licenceResponse{
		Accepted:    st.LicenceAccepted,
		Licence:     reference.LicenceText(),
		CurrentStep: 2,
	})
}

type dbSetupResponse struct {
	DBType         string           `json:"db_type"`
	StandardForm   forms.StandardDB `json:"standard_form"`
	StandardErrors forms.Errors     `json:"standard_errors"`
	CustomForm     forms.CustomDB   `json:"custom_form"`
	CustomErrors   forms.Errors     `json:"custom_errors"`
	CurrentStep    int              `json:"current_step"`
}

func (h *Handler) dbSetup(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.sessionHandle(w, r)
	if !ok {
		return
	}

	st := handle.State()
	h.respondJSON(w, r, http.StatusOK, dbSetupResponse{
		DBType:         st.EffectiveDBType(),
		StandardForm:   st.StandardForm,
		StandardErrors: orEmpty(st.StandardErrors),
		CustomForm:     st.CustomForm,
		CustomErrors:   orEmpty(st.CustomErrors),
		CurrentStep:    3,
	})
}

// dbSetupStandard records the standard-mode submission. The chosen mode and
// the form stick in the session even when validation fails, so a reload
// shows what was typed.
func (h *Handler) dbSetupStandard(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.sessionHandle(w, r)
	if !ok {
		return
	}

	var form forms.StandardDB
	if !h.decodeJSON(w, r, &form) {
		return
	}

	errs := form.Validate()
	handle.Update(func(st *session.State) {
		st.DBType = session.DBTypeStandard
		st.StandardForm = form
		st.StandardErrors = errs
	})

	if len(errs) > 0 {
		h.respondFieldErrors(w, r, errs)
		return
	}
	h.respondNext(w, r, pathAdminSetup)
}

// dbSetupCustom records the custom-mode submission. An uploaded CA
// certificate is written to the credentials store as soon as it passes its
// own checks, even if other fields still have errors; the stored path is
// what the provisioning run dials with later.
func (h *Handler) dbSetupCustom(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.sessionHandle(w, r)
	if !ok {
		return
	}

	var form forms.CustomDB
	if !h.decodeJSON(w, r, &form) {
		return
	}

	errs := form.Validate()

	certPath := ""
	if form.SSL && form.CertPEM != "" && errs[forms.FieldSSLCert] == "" && strings.TrimSpace(form.DBName) != "" {
		path, err := h.store.SaveCert(form.DBName, []byte(form.CertPEM))
		if err != nil {
			h.loggerFrom(r.Context()).Error("persist uploaded certificate", zap.Error(err))
			h.respondError(w, r, http.StatusInternalServerError, "could not store the certificate")
			return
		}
		certPath = path
	}

	handle.Update(func(st *session.State) {
		st.DBType = session.DBTypeCustom
		st.CustomForm = form.Redacted()
		st.CustomErrors = errs
		if certPath != "" {
			st.SSLCertPath = certPath
		}
	})

	if len(errs) > 0 {
		h.respondFieldErrors(w, r, errs)
		return
	}
	h.respondNext(w, r, pathAdminSetup)
}

type adminSetupResponse struct {
	Form        forms.Admin  `json:"form"`
	Errors      forms.Errors `json:"errors"`
	CurrentStep int          `json:"current_step"`
}

// adminSetup re-renders the admin step. A stale profile-picture error is
// dropped on the way in: the upload itself is never kept, so the message
// would outlive the thing it complained about.
func (h *Handler) adminSetup(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.sessionHandle(w, r)
	if !ok {
		return
	}

	st := handle.Update(func(s *session.State) {
		delete(s.AdminErrors, forms.FieldProfilePicture)
	})

	h.respondJSON(w, r, http.StatusOK, adminSetupResponse{
		Form:        st.AdminForm,
		Errors:      orEmpty(st.AdminErrors),
		CurrentStep: 4,
	})
}

// adminSetupSubmit validates the admin account. The raw password is parked in
// the session only on a clean submission; what the client gets back never
// includes it.
func (h *Handler) adminSetupSubmit(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.sessionHandle(w, r)
	if !ok {
		return
	}

	var form forms.Admin
	if !h.decodeJSON(w, r, &form) {
		return
	}

	errs := form.Validate()
	handle.Update(func(st *session.State) {
		st.AdminForm = form.Redacted()
		st.AdminErrors = errs
		if len(errs) == 0 {
			st.AdminPassword = form.Password
		}
	})

	if len(errs) > 0 {
		h.respondFieldErrors(w, r, errs)
		return
	}
	h.respondNext(w, r, pathCompanySetup)
}

type companySetupResponse struct {
	Form            forms.Company `json:"form"`
	Errors          forms.Errors  `json:"errors"`
	IndustryOptions []string      `json:"industry_options"`
	CurrentStep     int           `json:"current_step"`
}

func (h *Handler) companySetup(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.sessionHandle(w, r)
	if !ok {
		return
	}

	// same treatment as the profile picture: logo errors do not survive a
	// revisit
	st := handle.Update(func(s *session.State) {
		delete(s.CompanyErrors, forms.FieldCompanyLogo)
	})

	h.respondJSON(w, r, http.StatusOK, companySetupResponse{
		Form:            st.CompanyForm,
		Errors:          orEmpty(st.CompanyErrors),
		IndustryOptions: reference.Industries,
		CurrentStep:     5,
	})
}

func (h *Handler) companySetupSubmit(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.sessionHandle(w, r)
	if !ok {
		return
	}

	var form forms.Company
	if !h.decodeJSON(w, r, &form) {
		return
	}

	errs := form.Validate()
	handle.Update(func(st *session.State) {
		st.CompanyForm = form.Redacted()
		st.CompanyErrors = errs
	})

	if len(errs) > 0 {
		h.respondFieldErrors(w, r, errs)
		return
	}
	h.respondNext(w, r, pathSystemSetup)
}

type systemSetupResponse struct {
	Form        forms.System  `json:"form"`
	Errors      forms.Errors  `json:"errors"`
	Options     systemOptions `json:"options"`
	CurrentStep int           `json:"current_step"`
}

type systemOptions struct {
	Countries  []reference.Option `json:"countries"`
	Currencies []string           `json:"currencies"`
	Timezones  []string           `json:"timezones"`
	Languages  []string           `json:"languages"`
	Themes     []string           `json:"themes"`
	Modules    []string           `json:"modules"`
}

func (h *Handler) systemSetup(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.sessionHandle(w, r)
	if !ok {
		return
	}

	st := handle.Update(func(s *session.State) {
		if s.SystemForm.Modules == nil {
			s.SystemForm.Modules = []string{}
		}
	})

	h.respondJSON(w, r, http.StatusOK, systemSetupResponse{
		Form:   st.SystemForm,
		Errors: orEmpty(st.SystemErrors),
		Options: systemOptions{
			Countries:  reference.CountryOptions(),
			Currencies: reference.Currencies(),
			Timezones:  reference.Timezones(),
			Languages:  reference.Languages,
			Themes:     reference.Themes,
			Modules:    reference.ModuleList,
		},
		CurrentStep: 6,
	})
}

func (h *Handler) systemSetupSubmit(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.sessionHandle(w, r)
	if !ok {
		return
	}

	var form forms.System
	if !h.decodeJSON(w, r, &form) {
		return
	}

	errs := form.Validate()
	handle.Update(func(st *session.State) {
		st.SystemForm = form
		st.SystemErrors = errs
	})

	if len(errs) > 0 {
		h.respondFieldErrors(w, r, errs)
		return
	}
	h.respondNext(w, r, pathFinish)
}

type finishResponse struct {
	Summary     finishSummary `json:"summary"`
	CurrentStep int           `json:"current_step"`
}

type finishSummary struct {
	DBType      string   `json:"db_type"`
	DBName      string   `json:"db_name"`
	AdminEmail  string   `json:"admin_email"`
	CompanyName string   `json:"company_name"`
	Industry    string   `json:"industry"`
	Country     string   `json:"country"`
	Language    string   `json:"language"`
	Modules     []string `json:"modules"`
}

// finish shows the review summary before provisioning starts.
func (h *Handler) finish(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.sessionHandle(w, r)
	if !ok {
		return
	}

	st := handle.State()
	dbName := st.StandardForm.DBName
	if st.EffectiveDBType() == session.DBTypeCustom {
		dbName = st.CustomForm.DBName
	}

	modules := st.SystemForm.Modules
	if modules == nil {
		modules = []string{}
	}

	h.respondJSON(w, r, http.StatusOK, finishResponse{
		Summary: finishSummary{
			DBType:      st.EffectiveDBType(),
			DBName:      dbName,
			AdminEmail:  st.AdminForm.Email,
			CompanyName: st.CompanyForm.CompanyName,
			Industry:    st.CompanyForm.Industry,
			Country:     st.SystemForm.CountryCode,
			Language:    st.SystemForm.Language,
			Modules:     modules,
		},
		CurrentStep: 7,
	})
}

// sessionHandle pulls the middleware-injected session. A miss means the
// router is wired without session.Middleware, which is a deployment bug, so
// the client gets a 500 rather than a silent empty session.
func (h *Handler) sessionHandle(w http.ResponseWriter, r *http.Request) (*session.Handle, bool) {
	handle, ok := session.FromRequest(r)
	if !ok {
		h.loggerFrom(r.Context()).Error("session handle missing from request context")
		h.respondError(w, r, http.StatusInternalServerError, "session unavailable")
		return nil, false
	}
	return handle, true
}

func (h *Handler) loggerFrom(ctx context.Context) *zap.Logger {
	if logger, ok := platformlogging.FromContext(ctx); ok {
		return logger
	}
	return h.logger
}
