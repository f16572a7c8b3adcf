// Package remote wraps the FTP document repository behind a small
// path-explicit interface. Paths are always absolute: the control
// connection's working directory is never changed, so a failure in one
// folder cannot leave the connection pointing somewhere unexpected.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"time"

	"github.com/jlaffaye/ftp"
	"go.uber.org/zap"

	"github.com/investleasing/leasing-portal-api/pkg/config"
	appErrors "github.com/investleasing/leasing-portal-api/pkg/errors"
)

// Entry is one item of a directory listing.
type Entry struct {
	Name string
	Dir  bool
	Size int64
}

// Conn is a live connection to the remote repository. Implementations are
// stateful and single-connection: callers must not issue concurrent calls
// on one Conn, and must Close it on every exit path.
type Conn interface {
	List(ctx context.Context, path string) ([]Entry, error)
	Download(ctx context.Context, remotePath string, w io.Writer) error
	Close() error
}

// Dialer opens connections to the remote repository.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// FTPDialer dials the configured FTP server.
type FTPDialer struct {
	cfg    config.FTPConfig
	logger *zap.Logger
}

// NewDialer constructs an FTPDialer.
func NewDialer(cfg config.FTPConfig, logger *zap.Logger) *FTPDialer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FTPDialer{cfg: cfg, logger: logger}
}

// Dial connects and authenticates. Connections are never reused across
// sync runs.
func (d *FTPDialer) Dial(ctx context.Context) (Conn, error) {
	addr := fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port)

	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(d.cfg.CallTimeout))
	if err != nil {
		if isTimeout(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrRemoteTimeout.Code, appErrors.ErrRemoteTimeout.Status, "dial remote repository")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "dial remote repository")
	}

	if err := conn.Login(d.cfg.User, d.cfg.Password); err != nil {
		_ = conn.Quit()
		return nil, appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "authenticate to remote repository")
	}

	d.logger.Debug("connected to remote repository", zap.String("addr", addr))
	return &ftpConn{conn: conn, timeout: d.cfg.CallTimeout}, nil
}

type ftpConn struct {
	conn    *ftp.ServerConn
	timeout time.Duration
}

// List returns the entries of the given absolute path.
func (c *ftpConn) List(ctx context.Context, path string) ([]Entry, error) {
	var raw []*ftp.Entry
	err := c.withTimeout(ctx, func() error {
		var listErr error
		raw, listErr = c.conn.List(path)
		return listErr
	})
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(raw))
	for _, e := range raw {
		switch e.Type {
		case ftp.EntryTypeFolder:
			entries = append(entries, Entry{Name: e.Name, Dir: true})
		case ftp.EntryTypeFile:
			entries = append(entries, Entry{Name: e.Name, Size: int64(e.Size)})
		}
	}
	return entries, nil
}

// Download streams the remote file into w, overwriting nothing itself:
// the caller owns the destination.
func (c *ftpConn) Download(ctx context.Context, remotePath string, w io.Writer) error {
	return c.withTimeout(ctx, func() error {
		resp, err := c.conn.Retr(remotePath)
		if err != nil {
			return err
		}
		defer resp.Close() //nolint:errcheck
		_, err = io.Copy(w, resp)
		return err
	})
}

// Close terminates the session.
func (c *ftpConn) Close() error {
	return c.conn.Quit()
}

// withTimeout bounds one control-connection operation. The FTP control
// connection allows only a single in-flight command, so the operation runs
// in a goroutine solely to observe the deadline.
func (c *ftpConn) withTimeout(ctx context.Context, op func() error) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() { done <- op() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return appErrors.Wrap(ctx.Err(), appErrors.ErrRemoteTimeout.Code, appErrors.ErrRemoteTimeout.Status, "remote call timed out")
		}
		return ctx.Err()
	}
}

// IsNotExist reports whether the error is the server telling us a path
// does not exist (550), as opposed to a transport failure.
func IsNotExist(err error) bool {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return protoErr.Code == ftp.StatusFileUnavailable
	}
	return false
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
