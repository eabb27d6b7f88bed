package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/mbt/pkg/adapters/file"
	"github.com/aretw0/mbt/pkg/adapters/memory"
	"github.com/aretw0/mbt/pkg/adapters/redis"
	"github.com/aretw0/mbt/pkg/adapters/sqlstore"
	"github.com/aretw0/mbt/pkg/domain"
	"github.com/aretw0/mbt/pkg/persistence/middleware"
	"github.com/aretw0/mbt/pkg/ports"
)

// connectTimeout bounds opening a SQL backend.
const connectTimeout = 10 * time.Second

// KeyEnv names the environment variable holding the store encryption key.
const KeyEnv = "MBT_STORE_KEY"

// Storage bundles the sequence store and, when the backend supports it, a lock
// serializing recordings of the same sequence ID across processes.
type Storage struct {
	Store  ports.SequenceStore
	Locker ports.Locker
	close  func() error
}

// Close releases backend connections.
func (s *Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStorage creates the store selected by cfg, wrapped with redaction and
// encryption when they are configured.
func OpenStorage(cfg StoreConfig) (*Storage, error) {
	s, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}
	mws, err := storeMiddleware(cfg)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Store = middleware.Chain(s.Store, mws...)
	return s, nil
}

func storeMiddleware(cfg StoreConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		mw, err := middleware.NewRedactMiddleware(cfg.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}

	encoded := cfg.EncryptionKey
	if encoded == "" {
		encoded = os.Getenv(KeyEnv)
	}
	if encoded == "" {
		return mws, nil
	}
	enc := middleware.EncryptionConfig{}
	var err error
	if enc.ActiveKey, err = middleware.ParseKey(encoded); err != nil {
		return nil, fmt.Errorf("store encryption key: %w", err)
	}
	for i, k := range cfg.FallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("store fallback key %d: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	mw, err := middleware.NewEncryptionMiddleware(enc)
	if err != nil {
		return nil, err
	}
	return append(mws, mw), nil
}

func openBackend(cfg StoreConfig) (*Storage, error) {
	switch cfg.Kind {
	case "", "file":
		return &Storage{Store: file.NewStore(cfg.Path)}, nil
	case "memory":
		return &Storage{Store: memory.NewStore()}, nil
	case "redis":
		url := cfg.URL
		if url == "" {
			url = "localhost:6379"
		}
		var opts []redis.Option
		if cfg.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Prefix))
		}
		if cfg.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.TTL))
		}
		store := redis.New(url, cfg.Password, cfg.DB, opts...)
		return &Storage{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), store.Prefix()),
			close:  store.Close,
		}, nil
	case "sqlite":
		path, err := sqlitePath(cfg.Path)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		store, err := sqlstore.NewSQLiteStore(ctx, path)
		if err != nil {
			return nil, err
		}
		return &Storage{Store: store, close: store.Close}, nil
	case "mysql":
		if cfg.URL == "" {
			return nil, fmt.Errorf("store mysql: url (DSN) is required: %w", domain.ErrNotConfigured)
		}
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		store, err := sqlstore.NewMySQLStore(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		return &Storage{Store: store, close: store.Close}, nil
	}
	return nil, fmt.Errorf("store %q: %w", cfg.Kind, domain.ErrUnsupportedKind)
}

// sqlitePath resolves the database file. A directory gets a sequences.db inside it.
func sqlitePath(path string) (string, error) {
	if path == "" {
		path = filepath.Join(".mbt", "sequences.db")
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, "sequences.db"), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create store directory: %w", err)
	}
	return path, nil
}
