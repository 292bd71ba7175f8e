// SPDX-License-Identifier: MPL-2.0

package command

import (
	"os"
	"testing"

	"github.com/importctl/importctl/internal/logging"
)

func TestMain(m *testing.M) {
	logging.ConfigureTests(os.Stderr)
	os.Exit(m.Run())
}
