package ftpstore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
)

// Config carries the connection settings for the remote media store. The
// store gets it at construction, so tests and alternate environments supply
// their own instead of reading process-wide state.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	// RootDir is the base directory every upload lives under, e.g. "/media".
	RootDir string
	// BaseURL is the public read prefix. It stays out of stored references
	// so it can change without rewriting rows.
	BaseURL     string
	DialTimeout time.Duration
}

const defaultDialTimeout = 15 * time.Second

// UploadError reports a failed transfer and which step of the FTP session
// broke. Callers treat every instance the same way: the save that needed the
// upload is aborted.
type UploadError struct {
	Step string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("ftp upload: %s: %v", e.Step, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Store uploads wound photos over a per-call FTP session.
type Store struct {
	cfg Config
	log *slog.Logger
}

func New(cfg Config, log *slog.Logger) *Store {
	if cfg.Port == 0 {
		cfg.Port = 21
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{cfg: cfg, log: log}
}

// SanitizeFilename collapses whitespace runs into underscores so the name is
// usable as a remote leaf and inside public URLs.
func SanitizeFilename(name string) string {
	return strings.Join(strings.Fields(name), "_")
}

// Upload stores data under dir/filename on the remote server and returns the
// store-relative reference. Missing segments of dir are created on the way
// down; a segment another request created first is descended into rather
// than treated as an error. One attempt only: any failure comes back as an
// *UploadError and nothing is retried. The session is closed on every path.
func (s *Store) Upload(ctx context.Context, data []byte, filename, dir string) (string, error) {
	leaf := SanitizeFilename(filename)
	if leaf == "" {
		return "", &UploadError{Step: "validate", Err: fmt.Errorf("empty filename")}
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(s.cfg.DialTimeout))
	if err != nil {
		return "", s.fail("connect", dir, leaf, err)
	}
	defer conn.Quit()

	if err := conn.Login(s.cfg.User, s.cfg.Password); err != nil {
		return "", s.fail("login", dir, leaf, err)
	}
	if s.cfg.RootDir != "" {
		if err := conn.ChangeDir(s.cfg.RootDir); err != nil {
			return "", s.fail("chdir "+s.cfg.RootDir, dir, leaf, err)
		}
	}
	for _, segment := range strings.Split(dir, "/") {
		if segment == "" {
			continue
		}
		if err := s.descend(conn, segment); err != nil {
			return "", s.fail("mkdir "+segment, dir, leaf, err)
		}
	}
	if err := conn.Stor(leaf, bytes.NewReader(data)); err != nil {
		return "", s.fail("store", dir, leaf, err)
	}

	ref := dir + "/" + leaf
	s.log.Info("wound photo stored", "ref", ref, "bytes", len(data))
	return ref, nil
}

// descend enters segment, creating it first when the listing doesn't show
// it. Two requests racing on the same day folder both pass: the loser's
// MakeDir fails but the directory is there, so ChangeDir settles it.
func (s *Store) descend(conn *ftp.ServerConn, segment string) error {
	names, err := conn.NameList("")
	if err != nil {
		return err
	}
	if !slices.Contains(names, segment) {
		if err := conn.MakeDir(segment); err != nil {
			if cdErr := conn.ChangeDir(segment); cdErr == nil {
				return nil
			}
			return err
		}
	}
	return conn.ChangeDir(segment)
}

// PublicURL resolves a stored reference against the configured public base.
// Absolute references pass through untouched.
func (s *Store) PublicURL(ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/" + ref
}

func (s *Store) fail(step, dir, leaf string, err error) *UploadError {
	s.log.Error("wound photo upload failed", "step", step, "dir", dir, "filename", leaf, "error", err)
	return &UploadError{Step: step, Err: err}
}
