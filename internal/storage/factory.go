package storage

import (
	"context"
	"fmt"
	"strings"

	"empleoformal/internal/config"
)

// DeploymentMode selects where exports are written
type DeploymentMode string

const (
	DeploymentLocal DeploymentMode = "local"
	DeploymentGCS   DeploymentMode = "gcs"
)

// ParseDeploymentMode parses a --target flag value
func ParseDeploymentMode(s string) (DeploymentMode, error) {
	switch DeploymentMode(strings.ToLower(strings.TrimSpace(s))) {
	case DeploymentLocal, "":
		return DeploymentLocal, nil
	case DeploymentGCS:
		return DeploymentGCS, nil
	default:
		return "", fmt.Errorf("unsupported deployment mode: %s", s)
	}
}

// NewStorageClient creates a storage client based on deployment mode and configuration
func NewStorageClient(ctx context.Context, deploymentMode DeploymentMode, cfg *config.Config) (StorageClient, error) {
	switch deploymentMode {
	case DeploymentLocal:
		exportDir := cfg.ExportDir
		if exportDir == "" {
			exportDir = "exports"
		}

		localClient, err := NewLocalStorageClient(exportDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage client: %w", err)
		}
		return localClient, nil

	case DeploymentGCS:
		if cfg.GCSBucket == "" {
			return nil, fmt.Errorf("GCS_BUCKET is required for the gcs target")
		}
		gcsClient, err := NewGCSClient(ctx, cfg.GCSBucket, ExportPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize GCS client: %w", err)
		}
		return gcsClient, nil

	default:
		return nil, fmt.Errorf("unsupported deployment mode: %s", deploymentMode)
	}
}
