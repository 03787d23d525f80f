package core

import (
	"os"
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	const testKey = "TEST_GET_ENV_OR_DEFAULT"
	defer os.Unsetenv(testKey)

	tests := []struct {
		name         string
		envValue     string
		setEnv       bool
		defaultValue string
		want         string
	}{
		{
			name:         "returns env value when set",
			envValue:     "custom_value",
			setEnv:       true,
			defaultValue: "default",
			want:         "custom_value",
		},
		{
			name:         "returns default when not set",
			setEnv:       false,
			defaultValue: "default",
			want:         "default",
		},
		{
			name:         "returns default when empty",
			envValue:     "",
			setEnv:       true,
			defaultValue: "default",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv(testKey)
			if tt.setEnv {
				os.Setenv(testKey, tt.envValue)
			}
			got := GetEnvOrDefault(testKey, tt.defaultValue)
			if got != tt.want {
				t.Errorf("GetEnvOrDefault() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseIntEnv(t *testing.T) {
	const testKey = "TEST_PARSE_INT_ENV"
	defer os.Unsetenv(testKey)

	tests := []struct {
		name         string
		envValue     string
		setEnv       bool
		defaultValue int
		want         int
	}{
		{
			name:         "parses valid integer",
			envValue:     "42",
			setEnv:       true,
			defaultValue: 0,
			want:         42,
		},
		{
			name:         "returns default for garbage",
			envValue:     "not-a-number",
			setEnv:       true,
			defaultValue: 7,
			want:         7,
		},
		{
			name:         "returns default when not set",
			setEnv:       false,
			defaultValue: 8080,
			want:         8080,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv(testKey)
			if tt.setEnv {
				os.Setenv(testKey, tt.envValue)
			}
			got := ParseIntEnv(testKey, tt.defaultValue)
			if got != tt.want {
				t.Errorf("ParseIntEnv() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseBoolEnv(t *testing.T) {
	const testKey = "TEST_PARSE_BOOL_ENV"
	defer os.Unsetenv(testKey)

	tests := []struct {
		name         string
		envValue     string
		setEnv       bool
		defaultValue bool
		want         bool
	}{
		{name: "true value", envValue: "true", setEnv: true, want: true},
		{name: "numeric true", envValue: "1", setEnv: true, want: true},
		{name: "mixed case yes", envValue: "YES", setEnv: true, want: true},
		{name: "false value", envValue: "false", setEnv: true, defaultValue: true, want: false},
		{name: "off value", envValue: "off", setEnv: true, defaultValue: true, want: false},
		{name: "garbage keeps default", envValue: "maybe", setEnv: true, defaultValue: true, want: true},
		{name: "unset keeps default", setEnv: false, defaultValue: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv(testKey)
			if tt.setEnv {
				os.Setenv(testKey, tt.envValue)
			}
			got := ParseBoolEnv(testKey, tt.defaultValue)
			if got != tt.want {
				t.Errorf("ParseBoolEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDurationEnv(t *testing.T) {
	const testKey = "TEST_PARSE_DURATION_ENV"
	defer os.Unsetenv(testKey)

	os.Setenv(testKey, "45")
	if got := ParseDurationEnv(testKey, 30); got != 45*time.Second {
		t.Errorf("ParseDurationEnv() = %v, want 45s", got)
	}

	os.Unsetenv(testKey)
	if got := ParseDurationEnv(testKey, 30); got != 30*time.Second {
		t.Errorf("ParseDurationEnv() default = %v, want 30s", got)
	}
}
