package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.yaml", "-a", "http://localhost"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "conf.yaml"},
		},
		{
			name:         "equals form",
			args:         []string{"-a=http://api", "-t", "5"},
			allowedFlags: []string{"-a"},
			want:         []string{"-a=http://api"},
		},
		{
			name:         "unknown flags and positionals ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag without value at end",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "next dash token is not a value",
			args:         []string{"-i", "-t", "3"},
			allowedFlags: []string{"-i", "-t"},
			want:         []string{"-i", "-t", "3"},
		},
		{
			name:         "order preserved across several flags",
			args:         []string{"-d", "a.db", "-l", "debug", "--other", "x"},
			allowedFlags: []string{"-l", "-d"},
			want:         []string{"-d", "a.db", "-l", "debug"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestConfigPath(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short -c", func(t *testing.T) {
		t.Setenv(ConfigEnvVar, "")
		os.Args = []string{"testbin", "-c", "/etc/prodauth.yaml"}
		assert.Equal(t, "/etc/prodauth.yaml", ConfigPath())
	})

	t.Run("long -config, last wins", func(t *testing.T) {
		t.Setenv(ConfigEnvVar, "")
		os.Args = []string{"testbin", "-c", "/a.json", "-config", "/b.json"}
		assert.Equal(t, "/b.json", ConfigPath())
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv(ConfigEnvVar, "/from/env.yml")
		os.Args = []string{"testbin", "-a", "http://x"}
		assert.Equal(t, "/from/env.yml", ConfigPath())
	})

	t.Run("flag beats env", func(t *testing.T) {
		t.Setenv(ConfigEnvVar, "/from/env.yml")
		os.Args = []string{"testbin", "-config=/from/flag.json"}
		assert.Equal(t, "/from/flag.json", ConfigPath())
	})

	t.Run("nothing given", func(t *testing.T) {
		t.Setenv(ConfigEnvVar, "")
		os.Args = []string{"testbin"}
		assert.Empty(t, ConfigPath())
	})
}
