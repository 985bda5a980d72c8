package engine

import (
	"os"
	"testing"

	"github.com/lendops/paydate/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
