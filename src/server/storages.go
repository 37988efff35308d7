package server

import (
	"context"
	"fmt"

	"github.com/nas-ai/filemanager/src/config"
	"github.com/nas-ai/filemanager/src/drivers/storage"
	"github.com/nas-ai/filemanager/src/services/content"
	"github.com/sirupsen/logrus"
)

// BuildRegistry creates one backend per configured storage, in order.
func BuildRegistry(ctx context.Context, storages []config.StorageConfig, logger *logrus.Logger) (*content.Registry, error) {
	registry := content.NewRegistry()

	for _, sc := range storages {
		fsys, err := buildStorage(ctx, sc)
		if err != nil {
			return nil, fmt.Errorf("storage %q: %w", sc.Name, err)
		}
		if err := registry.Add(sc.Name, fsys); err != nil {
			return nil, err
		}

		logger.WithFields(logrus.Fields{
			"storage":   sc.Name,
			"driver":    sc.Driver,
			"read_only": sc.ReadOnly,
		}).Info("storage registered")
	}
	return registry, nil
}

func buildStorage(ctx context.Context, sc config.StorageConfig) (storage.Filesystem, error) {
	var fsys storage.Filesystem
	switch sc.Driver {
	case config.DriverMemory:
		fsys = storage.NewMemoryStore()

	case config.DriverLocal:
		store, err := storage.NewLocalStore(sc.Root)
		if err != nil {
			return nil, err
		}
		fsys = store

	case config.DriverS3:
		store, err := storage.NewS3Store(ctx, storage.S3Options{
			Bucket:    sc.Bucket,
			Prefix:    sc.Prefix,
			Region:    sc.Region,
			Endpoint:  sc.Endpoint,
			AccessKey: sc.AccessKey,
			SecretKey: sc.SecretKey,
			PathStyle: sc.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		fsys = store

	default:
		return nil, fmt.Errorf("unknown driver %q", sc.Driver)
	}

	if sc.ReadOnly {
		fsys = storage.WithReadOnly(fsys)
	}
	return fsys, nil
}
