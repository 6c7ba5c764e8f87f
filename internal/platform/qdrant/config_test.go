package qdrant

import (
	"errors"
	"testing"
)

func TestResolveConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("QDRANT_URL", "http://localhost:6333")
	t.Setenv("QDRANT_COLLECTION", "")
	t.Setenv("QDRANT_VECTOR_DIM", "768")

	cfg, err := ResolveConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveConfigFromEnv: %v", err)
	}
	if cfg.Collection != "watch_later_videos" {
		t.Fatalf("collection default: want=%q got=%q", "watch_later_videos", cfg.Collection)
	}
	if cfg.VectorDim != 768 {
		t.Fatalf("vector dim: want=768 got=%d", cfg.VectorDim)
	}
}

func TestResolveConfigFromEnvInvalidDim(t *testing.T) {
	t.Setenv("QDRANT_URL", "http://localhost:6333")
	t.Setenv("QDRANT_VECTOR_DIM", "not-a-number")

	_, err := ResolveConfigFromEnv()
	if err == nil {
		t.Fatalf("ResolveConfigFromEnv: expected error, got nil")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got=%T", err)
	}
	if cfgErr.Code != ConfigErrorInvalidVectorDim {
		t.Fatalf("error code: want=%q got=%q", ConfigErrorInvalidVectorDim, cfgErr.Code)
	}
}

func TestValidateConfig(t *testing.T) {
	cases := []struct {
		name     string
		cfg      Config
		hasDim   bool
		wantCode ConfigErrorCode
	}{
		{
			name:     "missing url",
			cfg:      Config{Collection: "c", VectorDim: 3},
			hasDim:   true,
			wantCode: ConfigErrorMissingURL,
		},
		{
			name:     "relative url",
			cfg:      Config{URL: "localhost:6333", Collection: "c", VectorDim: 3},
			hasDim:   true,
			wantCode: ConfigErrorInvalidURL,
		},
		{
			name:     "missing collection",
			cfg:      Config{URL: "http://localhost:6333", VectorDim: 3},
			hasDim:   true,
			wantCode: ConfigErrorMissingCollection,
		},
		{
			name:     "missing dim",
			cfg:      Config{URL: "http://localhost:6333", Collection: "c"},
			hasDim:   false,
			wantCode: ConfigErrorMissingVectorDim,
		},
		{
			name:     "negative dim",
			cfg:      Config{URL: "http://localhost:6333", Collection: "c", VectorDim: -1},
			hasDim:   true,
			wantCode: ConfigErrorInvalidVectorDim,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateConfig(tc.cfg, tc.hasDim)
			if err == nil {
				t.Fatalf("ValidateConfig: expected error, got nil")
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got=%T", err)
			}
			if cfgErr.Code != tc.wantCode {
				t.Fatalf("error code: want=%q got=%q", tc.wantCode, cfgErr.Code)
			}
		})
	}

	valid := Config{URL: "http://localhost:6333", Collection: "c", VectorDim: 768}
	if err := ValidateConfig(valid, true); err != nil {
		t.Fatalf("ValidateConfig valid: %v", err)
	}
}
