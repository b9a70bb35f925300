package utils

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/datazip-inc/olake-configurator/constants"
	"github.com/goccy/go-json"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalFile(t *testing.T) {
	dir := t.TempDir()

	testCases := []struct {
		name     string
		fileName string
		content  string
		want     map[string]any
		wantErr  bool
	}{
		{
			name:     "json",
			fileName: "config.json",
			content:  `{"host":"localhost","port":5432}`,
			want:     map[string]any{"host": "localhost", "port": float64(5432)},
		},
		{
			name:     "yaml",
			fileName: "config.yaml",
			content:  "host: localhost\nport: 5432\n",
			want:     map[string]any{"host": "localhost", "port": float64(5432)},
		},
		{
			name:     "broken json",
			fileName: "broken.json",
			content:  `{"host":`,
			wantErr:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.fileName)
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o600))

			got := map[string]any{}
			err := UnmarshalFile(path, &got, false)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	assert.Error(t, UnmarshalFile(filepath.Join(dir, "missing.json"), &map[string]any{}, false))
}

func TestUnmarshalEncryptedFile(t *testing.T) {
	viper.Set(constants.EncryptionKey, "local-passphrase")
	defer viper.Set(constants.EncryptionKey, "")

	plain := []byte(`{"password":"secret"}`)
	cipherData, err := Encrypt(context.Background(), plain)
	require.NoError(t, err)
	assert.NotEqual(t, plain, cipherData)

	dir := t.TempDir()

	// url-safe base64 string, quoted the way the backend stores it
	quoted, err := json.Marshal(base64.URLEncoding.EncodeToString(cipherData))
	require.NoError(t, err)
	stringFile := filepath.Join(dir, "config.enc")
	require.NoError(t, os.WriteFile(stringFile, quoted, 0o600))

	got := map[string]any{}
	require.NoError(t, UnmarshalFile(stringFile, &got, true))
	assert.Equal(t, "secret", got["password"])

	// envelope with std base64
	envelope, err := json.Marshal(map[string]string{"encrypted_data": base64.StdEncoding.EncodeToString(cipherData)})
	require.NoError(t, err)
	envelopeFile := filepath.Join(dir, "envelope.json")
	require.NoError(t, os.WriteFile(envelopeFile, envelope, 0o600))

	got = map[string]any{}
	require.NoError(t, UnmarshalFile(envelopeFile, &got, true))
	assert.Equal(t, "secret", got["password"])

	// plain objects pass through even with a key configured
	plainFile := filepath.Join(dir, "plain.json")
	require.NoError(t, os.WriteFile(plainFile, []byte(`{"host":"db"}`), 0o600))
	got = map[string]any{}
	require.NoError(t, UnmarshalFile(plainFile, &got, true))
	assert.Equal(t, "db", got["host"])
}

func TestDecryptWrongKey(t *testing.T) {
	viper.Set(constants.EncryptionKey, "first")
	cipherData, err := Encrypt(context.Background(), []byte("payload"))
	require.NoError(t, err)

	viper.Set(constants.EncryptionKey, "second")
	defer viper.Set(constants.EncryptionKey, "")

	_, err = Decrypt(context.Background(), cipherData)
	assert.Error(t, err)

	_, err = Decrypt(context.Background(), []byte("x"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	type options struct {
		BaseURL  string        `json:"base_url" validate:"required,url"`
		Interval time.Duration `json:"interval" validate:"gt=0"`
	}

	assert.NoError(t, Validate(&options{BaseURL: "http://localhost:8000", Interval: time.Second}))

	err := Validate(&options{BaseURL: "", Interval: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")
	assert.Contains(t, err.Error(), "interval")

	err = ValidateEach([]*options{{BaseURL: "http://a", Interval: 1}, {BaseURL: "nope", Interval: 1}}, "opts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opts[1]")
}

func TestErrExecSequential(t *testing.T) {
	calls := 0
	err := ErrExecSequential(
		func() error { calls++; return nil },
		ErrExecFormat("first: %w", func() error { calls++; return assert.AnError }),
		func() error { calls++; return assert.AnError },
	)

	assert.Equal(t, 3, calls, "every function runs even after a failure")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first:")
	assert.ErrorIs(t, err, assert.AnError)

	assert.NoError(t, ErrExecSequential(func() error { return nil }))
}

func TestArrayContainsAndTernary(t *testing.T) {
	idx, found := ArrayContains([]string{"a", "b"}, func(s string) bool { return s == "b" })
	assert.True(t, found)
	assert.Equal(t, 1, idx)

	_, found = ArrayContains([]string{"a"}, func(s string) bool { return s == "z" })
	assert.False(t, found)

	assert.Equal(t, "yes", Ternary(true, "yes", "no"))
	assert.Equal(t, "no", Ternary(false, "yes", "no"))
}
