package config

import "testing"

func TestShouldMigrate(t *testing.T) {
	tests := []struct {
		name  string
		mode  string
		force bool
		want  bool
	}{
		{"debug migrates by default", "debug", false, true},
		{"test migrates by default", "test", false, true},
		{"release skips by default", "release", false, false},
		{"release migrates when forced", "release", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{ForceMigrate: tt.force}
			cfg.Server.Mode = tt.mode
			if got := cfg.ShouldMigrate(); got != tt.want {
				t.Fatalf("ShouldMigrate() = %v, want %v", got, tt.want)
			}
		})
	}
}
