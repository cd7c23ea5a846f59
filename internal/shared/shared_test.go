package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$") {
		t.Errorf("unexpected hash encoding: %s", hash)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
		wantErr  bool
	}{
		{name: "matching password", password: "correct horse", hash: hash, want: true},
		{name: "wrong password", password: "battery staple", hash: hash, want: false},
		{name: "malformed hash", password: "x", hash: "not-a-hash", wantErr: true},
		{name: "other algorithm", password: "x", hash: "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VerifyPassword(tt.password, tt.hash)
			if (err != nil) != tt.wantErr {
				t.Fatalf("VerifyPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("VerifyPassword() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("salted", func(t *testing.T) {
		other, err := HashPassword("correct horse")
		if err != nil {
			t.Fatalf("HashPassword() error = %v", err)
		}
		if other == hash {
			t.Error("expected distinct hashes for the same password")
		}
	})
}

func TestHelpers(t *testing.T) {
	t.Run("GenerateID", func(t *testing.T) {
		if a, b := GenerateID(), GenerateID(); a == b || len(a) != 36 {
			t.Errorf("unexpected ids %q %q", a, b)
		}
	})

	t.Run("GenerateState", func(t *testing.T) {
		state, err := GenerateState()
		if err != nil {
			t.Fatalf("GenerateState() error = %v", err)
		}
		if len(state) != 32 || strings.Contains(state, "-") {
			t.Errorf("unexpected state %q", state)
		}
	})

	t.Run("ExpandHome", func(t *testing.T) {
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skip("no home directory")
		}
		if got := ExpandHome("~/.tripmate/session.jwt"); got != filepath.Join(home, ".tripmate/session.jwt") {
			t.Errorf("ExpandHome() = %s", got)
		}
		if got := ExpandHome("/abs/path"); got != "/abs/path" {
			t.Errorf("ExpandHome() should keep absolute paths, got %s", got)
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "tripmate.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		logger.Info("hello", "key", "value")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "hello") {
			t.Errorf("expected log line in file, got %q", string(data))
		}
	})

	t.Run("browserCommand", func(t *testing.T) {
		tests := []struct {
			name     string
			goos     string
			override string
			want     string
			wantErr  bool
		}{
			{name: "darwin", goos: "darwin", want: "open https://x"},
			{name: "linux", goos: "linux", want: "xdg-open https://x"},
			{name: "windows", goos: "windows", want: "rundll32 url.dll,FileProtocolHandler https://x"},
			{name: "override wins", goos: "linux", override: "firefox --new-window", want: "firefox --new-window https://x"},
			{name: "unsupported", goos: "plan9", wantErr: true},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				name, args, err := browserCommand(tt.goos, tt.override, "https://x")
				if tt.wantErr {
					if !errors.Is(err, ErrInvalidConfig) {
						t.Errorf("expected ErrInvalidConfig, got %v", err)
					}
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got := strings.Join(append([]string{name}, args...), " "); got != tt.want {
					t.Errorf("command = %q, want %q", got, tt.want)
				}
			})
		}
	})
}
