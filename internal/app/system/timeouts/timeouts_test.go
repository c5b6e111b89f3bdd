package timeouts

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	Reset()
	if got := Ping(); got != DefaultPing {
		t.Errorf("Ping() = %v, want %v", got, DefaultPing)
	}
	if got := Short(); got != DefaultShort {
		t.Errorf("Short() = %v, want %v", got, DefaultShort)
	}
	if got := Medium(); got != DefaultMedium {
		t.Errorf("Medium() = %v, want %v", got, DefaultMedium)
	}
	if got := Long(); got != DefaultLong {
		t.Errorf("Long() = %v, want %v", got, DefaultLong)
	}
}

func TestConfigureFromEnv(t *testing.T) {
	t.Setenv("MINUTEHUB_TIMEOUT_MEDIUM", "15s")
	t.Setenv("MINUTEHUB_TIMEOUT_LONG", "1m")
	t.Setenv("MINUTEHUB_TIMEOUT_SHORT", "nonsense")
	t.Setenv("MINUTEHUB_TIMEOUT_PING", "-1s")

	Reset()
	ConfigureFromEnv()
	defer Reset()

	if got := Medium(); got != 15*time.Second {
		t.Errorf("Medium() = %v, want 15s", got)
	}
	if got := Long(); got != time.Minute {
		t.Errorf("Long() = %v, want 1m", got)
	}
	// Invalid and non-positive values keep the defaults.
	if got := Short(); got != DefaultShort {
		t.Errorf("Short() = %v, want default %v", got, DefaultShort)
	}
	if got := Ping(); got != DefaultPing {
		t.Errorf("Ping() = %v, want default %v", got, DefaultPing)
	}
}
