//go:build !windows

package envstore

import "fmt"

func openSystem(scope, _ string) (Store, error) {
	return nil, fmt.Errorf("no system environment store for scope %q on this platform; set store_file", scope)
}
