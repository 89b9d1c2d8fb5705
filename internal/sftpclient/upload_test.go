package sftpclient

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{
		Host: "test-host",
		User: "test-user",
		Pass: "test-pass",
	}

	// Port defaults to 22 inside UploadFiles if not set
	if cfg.Port != 0 {
		t.Errorf("Expected default Port to be 0, got %d", cfg.Port)
	}

	// RemoteDir defaults to "/" inside UploadFiles if not set
	if cfg.RemoteDir != "" {
		t.Errorf("Expected default RemoteDir to be empty, got %q", cfg.RemoteDir)
	}
}

// Note: the actual transfer needs a live SFTP server, so these cases only
// exercise the validation and dial paths of UploadFiles.

func TestUploadFilesValidation(t *testing.T) {
	testCases := []struct {
		name          string
		cfg           Config
		errorContains string
	}{
		{
			name:          "Missing credentials",
			cfg:           Config{},
			errorContains: "sftp: missing env SFTP_HOST / SFTP_USER / SFTP_PASS",
		},
		{
			name:          "Missing password only",
			cfg:           Config{Host: "test-host", User: "test-user"},
			errorContains: "sftp: missing env",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := UploadFiles(context.Background(), tc.cfg, "courses.csv")
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.errorContains) {
				t.Errorf("Expected error to contain %q, got %q", tc.errorContains, err.Error())
			}
		})
	}
}

func TestUploadFilesHonorsContextDuringDial(t *testing.T) {
	cfg := Config{
		Host: "10.255.255.1", // non-routable, dial will hang
		User: "test-user",
		Pass: "test-pass",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := UploadFiles(ctx, cfg, "courses.csv")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "sftp: dial") {
		t.Errorf("Expected a dial error, got %q", err.Error())
	}
}
