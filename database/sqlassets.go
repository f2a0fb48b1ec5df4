package sqlassets

import _ "embed"

//go:embed schema/tenant/users.sql
var UsersSQL string

//go:embed schema/tenant/company.sql
var CompanySQL string

//go:embed schema/tenant/languages.sql
var LanguagesSQL string

//go:embed schema/tenant/modules.sql
var ModulesSQL string
