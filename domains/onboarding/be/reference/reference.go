// Package reference holds the static option data the onboarding wizard offers
// and the seed values provisioning writes into a fresh tenant database.
package reference

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
)

// Languages are the codes seeded into the languages table; the seeded label is
// the uppercased code.
var Languages = []string{"en", "fr", "de", "es", "it", "pt", "nl"}

// Themes selectable during system setup.
var Themes = []string{"light", "dark", "system"}

// ModuleList is the set of starter modules offered during system setup.
var ModuleList = []string{"CRM", "HR", "Accounting", "Inventory", "Sales", "Purchases", "Manufacturing"}

// Industries offered on the company step.
var Industries = []string{
	"Agriculture",
	"Construction",
	"Education",
	"Energy",
	"Finance",
	"Healthcare",
	"Hospitality",
	"Logistics",
	"Manufacturing",
	"Retail",
	"Technology",
	"Other",
}

// Step describes one wizard screen.
type Step struct {
	Number int    `json:"number"`
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	Path   string `json:"path"`
}

// Steps lists the wizard screens in order.
var Steps = []Step{
	{Number: 1, Slug: "welcome", Title: "Welcome", Path: "/"},
	{Number: 2, Slug: "licence", Title: "Licence", Path: "/licence"},
	{Number: 3, Slug: "db-setup", Title: "Database Setup", Path: "/db-setup"},
	{Number: 4, Slug: "admin-user-setup", Title: "Admin User", Path: "/admin-user-setup"},
	{Number: 5, Slug: "company-setup", Title: "Company", Path: "/company-setup"},
	{Number: 6, Slug: "system-setup", Title: "System", Path: "/system-setup"},
	{Number: 7, Slug: "finish", Title: "Finish", Path: "/finish"},
}

// Country is one selectable country with its default currency and timezone.
type Country struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Timezone string `json:"timezone"`
}

// Option is a value/label pair for select inputs.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

//go:embed countries.json
var countriesJSON []byte

//go:embed licence.txt
var licenceText string

var countries = mustLoadCountries()

func mustLoadCountries() []Country {
	var loaded []Country
	if err := json.Unmarshal(countriesJSON, &loaded); err != nil {
		panic(fmt.Sprintf("parse embedded countries data: %v", err))
	}
	return loaded
}

// Countries returns the embedded country list.
func Countries() []Country {
	return countries
}

// CountryOptions returns value/label pairs for the country select.
func CountryOptions() []Option {
	options := make([]Option, 0, len(countries))
	for _, c := range countries {
		options = append(options, Option{Value: c.Code, Label: c.Name})
	}
	return options
}

// Currencies returns the distinct currencies across countries, sorted.
func Currencies() []string {
	return distinct(func(c Country) string { return c.Currency })
}

// Timezones returns the distinct timezones across countries, sorted.
func Timezones() []string {
	return distinct(func(c Country) string { return c.Timezone })
}

// LicenceText returns the embedded licence shown at step two.
func LicenceText() string {
	return licenceText
}

// Contains reports whether value is present in values.
func Contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func distinct(pick func(Country) string) []string {
	seen := make(map[string]struct{}, len(countries))
	values := make([]string, 0, len(countries))
	for _, c := range countries {
		v := pick(c)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
