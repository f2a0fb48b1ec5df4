// Package session holds the wizard's server-side session: the typed state
// collected across steps, an in-memory store with TTL expiry, and the signed
// cookie that ties a browser to its state.
package session

import (
	"maps"
	"slices"

	"github.com/code-merge/accompany/domains/onboarding/be/forms"
)

// Database setup modes recorded by the third step.
const (
	DBTypeStandard = "standard"
	DBTypeCustom   = "custom"
)

// State is everything the wizard collects for one visitor. Mutation goes
// through Store.Update so concurrent requests on the same session stay
// race-free.
type State struct {
	LicenceAccepted bool

	DBType         string
	StandardForm   forms.StandardDB
	StandardErrors forms.Errors
	CustomForm     forms.CustomDB
	CustomErrors   forms.Errors
	SSLCertPath    string

	AdminForm     forms.Admin
	AdminErrors   forms.Errors
	AdminPassword string

	CompanyForm   forms.Company
	CompanyErrors forms.Errors

	SystemForm   forms.System
	SystemErrors forms.Errors

	ProvisioningStarted bool
	OnboardingComplete  bool
}

// snapshot returns a copy sharing no maps or slices with s, so callers can
// read it while later requests mutate the live state.
func (s *State) snapshot() State {
	out := *s
	out.StandardErrors = maps.Clone(s.StandardErrors)
	out.CustomErrors = maps.Clone(s.CustomErrors)
	out.AdminErrors = maps.Clone(s.AdminErrors)
	out.CompanyErrors = maps.Clone(s.CompanyErrors)
	out.SystemErrors = maps.Clone(s.SystemErrors)
	out.SystemForm.Modules = slices.Clone(s.SystemForm.Modules)
	return out
}

// EffectiveDBType returns the chosen setup mode, defaulting to standard when
// step three has not been submitted yet.
func (s *State) EffectiveDBType() string {
	if s.DBType == DBTypeCustom {
		return DBTypeCustom
	}
	return DBTypeStandard
}

// ClearOnboarding drops the collected wizard data once provisioning has run.
// Licence acceptance, the stored certificate path and the completion flags
// survive; the completion flow manages those itself.
func (s *State) ClearOnboarding() {
	s.DBType = ""
	s.StandardForm = forms.StandardDB{}
	s.StandardErrors = nil
	s.CustomForm = forms.CustomDB{}
	s.CustomErrors = nil
	s.AdminForm = forms.Admin{}
	s.AdminErrors = nil
	s.AdminPassword = ""
	s.CompanyForm = forms.Company{}
	s.CompanyErrors = nil
	s.SystemForm = forms.System{}
	s.SystemErrors = nil
}
