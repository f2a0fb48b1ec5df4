package root

import (
	profilescmd "github.com/code-merge/accompany/apps/cli/cmd/profiles"
	provisioncmd "github.com/code-merge/accompany/apps/cli/cmd/provision"
)

func init() {
	Root().AddCommand(provisioncmd.Command())
	Root().AddCommand(profilescmd.Command())
}
