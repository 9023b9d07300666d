package store

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/viant/afs"
	"golang.org/x/oauth2"
)

// FileStore persists the token as a JSON document at an afs URL (file://, mem://, gs://, s3://...).
// Every Set replaces the whole document, so readers never see a partial token.
type FileStore struct {
	mu   sync.Mutex
	URL  string
	fs   afs.Service
	opts *options
}

type fileSnapshot struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType,omitempty"`
	Expiry      time.Time `json:"expiry,omitempty"`
}

func (f *FileStore) Set(ctx context.Context, token string, ttl time.Duration) error {
	t := f.opts.newToken(token, ttl)
	data, err := json.MarshalIndent(fileSnapshot{AccessToken: t.AccessToken, TokenType: t.TokenType, Expiry: t.Expiry}, "", "  ")
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fs.Upload(ctx, f.URL, 0o600, bytes.NewReader(data))
}

func (f *FileStore) Get(ctx context.Context) *oauth2.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	ok, err := f.fs.Exists(ctx, f.URL)
	if err != nil || !ok {
		if err != nil {
			f.opts.logger.Debug("token store unavailable", "url", f.URL, "error", err)
		}
		return nil
	}
	data, err := f.fs.DownloadWithURL(ctx, f.URL)
	if err != nil {
		f.opts.logger.Debug("failed to read token", "url", f.URL, "error", err)
		return nil
	}
	var snap fileSnapshot
	if err = json.Unmarshal(data, &snap); err != nil || snap.AccessToken == "" {
		return nil
	}
	return &oauth2.Token{AccessToken: snap.AccessToken, TokenType: snap.TokenType, Expiry: snap.Expiry}
}

func (f *FileStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ok, err := f.fs.Exists(ctx, f.URL)
	if err != nil || !ok {
		return err
	}
	return f.fs.Delete(ctx, f.URL)
}

// NewFileStore creates a Store that persists the token at the given afs URL.
func NewFileStore(URL string, opts ...Option) *FileStore {
	return &FileStore{URL: URL, fs: afs.New(), opts: newOptions(opts)}
}
