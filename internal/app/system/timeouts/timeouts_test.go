package timeouts_test

import (
	"testing"
	"time"

	"github.com/melodica-app/melodica/internal/app/system/timeouts"
)

func TestDefaults(t *testing.T) {
	timeouts.Reset()

	if got := timeouts.Ping(); got != timeouts.DefaultPing {
		t.Errorf("Ping: got %v, want %v", got, timeouts.DefaultPing)
	}
	if got := timeouts.Short(); got != timeouts.DefaultShort {
		t.Errorf("Short: got %v, want %v", got, timeouts.DefaultShort)
	}
	if got := timeouts.Medium(); got != timeouts.DefaultMedium {
		t.Errorf("Medium: got %v, want %v", got, timeouts.DefaultMedium)
	}
	if got := timeouts.Batch(); got != timeouts.DefaultBatch {
		t.Errorf("Batch: got %v, want %v", got, timeouts.DefaultBatch)
	}
}

func TestConfigure_OverridesNonZero(t *testing.T) {
	timeouts.Reset()
	t.Cleanup(timeouts.Reset)

	timeouts.Configure(timeouts.Config{Short: 9 * time.Second})

	if got := timeouts.Short(); got != 9*time.Second {
		t.Errorf("Short after Configure: got %v, want %v", got, 9*time.Second)
	}
	// Zero values keep defaults.
	if got := timeouts.Medium(); got != timeouts.DefaultMedium {
		t.Errorf("Medium after Configure: got %v, want %v", got, timeouts.DefaultMedium)
	}
}
