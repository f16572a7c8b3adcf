package registry

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/investleasing/leasing-portal-api/internal/remote"
	"github.com/investleasing/leasing-portal-api/pkg/storage"
)

// Loader fetches the customer registry from the remote repository. Each
// Fetch opens its own connection; callers that already hold a connection
// use FetchWith instead.
type Loader struct {
	dialer       remote.Dialer
	scratch      *storage.ScratchStore
	registryPath string
	logger       *zap.Logger
}

// NewLoader constructs a Loader.
func NewLoader(dialer remote.Dialer, scratch *storage.ScratchStore, registryPath string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{dialer: dialer, scratch: scratch, registryPath: registryPath, logger: logger}
}

// Fetch downloads and parses the registry over a fresh connection.
func (l *Loader) Fetch(ctx context.Context) (*Registry, error) {
	conn, err := l.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close() //nolint:errcheck

	return l.FetchWith(ctx, conn)
}

// FetchWith downloads and parses the registry using an existing
// connection. The scratch copy is removed on every path.
func (l *Loader) FetchWith(ctx context.Context, conn remote.Conn) (*Registry, error) {
	local := l.scratch.TempPath("customers.xml")
	file, err := l.scratch.Create(local)
	if err != nil {
		return nil, err
	}

	downloadErr := conn.Download(ctx, l.registryPath, file)
	closeErr := file.Close()
	defer func() {
		if err := l.scratch.Remove(local); err != nil {
			l.logger.Warn("failed to remove registry scratch copy", zap.Error(err))
		}
	}()
	if downloadErr != nil {
		return nil, downloadErr
	}
	if closeErr != nil {
		return nil, closeErr
	}

	data, err := os.ReadFile(local)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
