package integration

import (
	"os"
	"testing"

	"github.com/freightcore/backend/internal/domain/identity"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	identity.PasswordCost = bcrypt.MinCost
	code := m.Run()
	TerminateSharedContainer()
	os.Exit(code)
}
