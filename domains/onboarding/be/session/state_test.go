package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/code-merge/accompany/domains/onboarding/be/forms"
)

func TestEffectiveDBTypeDefaultsToStandard(t *testing.T) {
	t.Parallel()

	state := State{}
	require.Equal(t, DBTypeStandard, state.EffectiveDBType())

	state.DBType = DBTypeCustom
	require.Equal(t, DBTypeCustom, state.EffectiveDBType())

	state.DBType = "garbage"
	require.Equal(t, DBTypeStandard, state.EffectiveDBType())
}

func TestClearOnboardingDropsWizardData(t *testing.T) {
	t.Parallel()

	state := State{
		LicenceAccepted: true,
		DBType:          DBTypeCustom,
		StandardForm:    forms.StandardDB{DBName: "acme"},
		StandardErrors:  forms.Errors{forms.FieldDBName: "nope"},
		CustomForm:      forms.CustomDB{Host: "db.internal"},
		CustomErrors:    forms.Errors{forms.FieldHost: "nope"},
		SSLCertPath:     "/home/app/.accompany/certs/acme-abc.pem",
		AdminForm:       forms.Admin{Email: "ada@example.com"},
		AdminErrors:     forms.Errors{forms.FieldEmail: "nope"},
		AdminPassword:   "hunter2hunter2",
		CompanyForm:     forms.Company{CompanyName: "Globex"},
		CompanyErrors:   forms.Errors{forms.FieldCompanyName: "nope"},
		SystemForm:      forms.System{Language: "en"},
		SystemErrors:    forms.Errors{forms.FieldLanguage: "nope"},

		ProvisioningStarted: true,
		OnboardingComplete:  true,
	}

	state.ClearOnboarding()

	require.Empty(t, state.DBType)
	require.Empty(t, state.StandardForm)
	require.Nil(t, state.StandardErrors)
	require.Empty(t, state.CustomForm)
	require.Nil(t, state.CustomErrors)
	require.Empty(t, state.AdminForm)
	require.Nil(t, state.AdminErrors)
	require.Empty(t, state.AdminPassword)
	require.Empty(t, state.CompanyForm)
	require.Nil(t, state.CompanyErrors)
	require.Empty(t, state.SystemForm)
	require.Nil(t, state.SystemErrors)

	require.True(t, state.LicenceAccepted)
	require.NotEmpty(t, state.SSLCertPath)
	require.True(t, state.ProvisioningStarted)
	require.True(t, state.OnboardingComplete)
}
