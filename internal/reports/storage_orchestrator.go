package reports

import (
	"context"
	"fmt"
	"path"

	"empleoformal/internal/logger"
	"empleoformal/internal/storage"
)

// StorageOrchestrator writes generated export files to a storage backend
type StorageOrchestrator struct {
	storage storage.StorageClient
	log     *logger.Logger
}

// NewStorageOrchestrator creates a storage orchestrator over client
func NewStorageOrchestrator(client storage.StorageClient) *StorageOrchestrator {
	return &StorageOrchestrator{
		storage: client,
		log:     logger.Component("export"),
	}
}

// StoreAllFiles stores every generated file under its folder path and
// returns the stored paths in write order
func (so *StorageOrchestrator) StoreAllFiles(ctx context.Context, files *GeneratedFiles) ([]string, error) {
	if files == nil || len(files.Names) == 0 {
		return nil, fmt.Errorf("no files to store")
	}

	if err := so.storage.CreateDir(ctx, files.FolderPath); err != nil {
		return nil, fmt.Errorf("failed to create export folder %s: %w", files.FolderPath, err)
	}

	stored := make([]string, 0, len(files.Names))
	for _, name := range files.Names {
		filePath := path.Join(files.FolderPath, name)
		if err := so.storage.StoreFile(ctx, filePath, files.Files[name]); err != nil {
			return stored, fmt.Errorf("failed to store %s: %w", filePath, err)
		}
		stored = append(stored, filePath)
	}

	so.log.Info("export stored", logger.Fields{"folder": files.FolderPath, "files": len(stored)})
	return stored, nil
}
