package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantErr   bool
		wantField string
	}{
		{
			name:    "valid minimal",
			cfg:     Config{Bucket: "my-bucket"},
			wantErr: false,
		},
		{
			name: "valid with explicit credentials",
			cfg: Config{
				Bucket:          "my-bucket",
				AccessKeyID:     "AKIAEXAMPLE",
				SecretAccessKey: "secret",
			},
			wantErr: false,
		},
		{
			name:      "missing bucket",
			cfg:       Config{},
			wantErr:   true,
			wantField: "Bucket",
		},
		{
			name: "access key without secret",
			cfg: Config{
				Bucket:      "my-bucket",
				AccessKeyID: "AKIAEXAMPLE",
			},
			wantErr:   true,
			wantField: "AccessKeyID/SecretAccessKey",
		},
		{
			name: "secret without access key",
			cfg: Config{
				Bucket:          "my-bucket",
				SecretAccessKey: "secret",
			},
			wantErr:   true,
			wantField: "AccessKeyID/SecretAccessKey",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{Field: "Bucket", Message: "bucket name is required"}
	assert.Equal(t, "s3 config: Bucket: bucket name is required", err.Error())
}
