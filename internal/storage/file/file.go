// Package file stores campaigns as one JSON document per campaign in a
// directory, optionally zstd-compressed.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hexcrawl/internal/game/campaign"
	"github.com/cory-johannsen/hexcrawl/internal/game/grid"
)

const jsonSuffix = ".json"

// Store is a campaign.Store over a directory of documents named
// <id>.json or <id>.json.zst.
type Store struct {
	mu       sync.Mutex
	dir      string
	compress bool
	logger   *zap.Logger
}

var _ campaign.Store = (*Store)(nil)

// Open returns a Store rooted at dir, creating it if needed.
//
// Postcondition: New saves are compressed when compress is set; documents of
// either form are readable.
func Open(dir string, compress bool, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating campaign dir %s: %w", dir, err)
	}
	return &Store{dir: dir, compress: compress, logger: logger}, nil
}

func (s *Store) path(id uuid.UUID, compressed bool) string {
	name := id.String() + jsonSuffix
	if compressed {
		name += ZstdSuffix
	}
	return filepath.Join(s.dir, name)
}

// Save writes c, replacing any earlier document for c.ID in either form.
func (s *Store) Save(_ context.Context, c *campaign.Campaign) error {
	if c.ID == uuid.Nil {
		return errors.New("file store: campaign id must be set")
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding campaign %s: %w", c.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeDocument(s.path(c.ID, s.compress), b); err != nil {
		return err
	}
	stale := s.path(c.ID, !s.compress)
	if err := os.Remove(stale); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("removing stale campaign document", zap.String("path", stale), zap.Error(err))
	}
	s.logger.Debug("campaign saved", zap.String("id", c.ID.String()), zap.Int("bytes", len(b)))
	return nil
}

// Load reads and schema-validates the campaign with id.
func (s *Store) Load(_ context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, compressed := range []bool{s.compress, !s.compress} {
		c, err := readCampaign(s.path(id, compressed))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return c, err
	}
	return nil, fmt.Errorf("%w: %s", campaign.ErrNotFound, id)
}

// List returns summaries of every readable document, newest first.
// Unreadable documents are logged and skipped.
func (s *Store) List(_ context.Context) ([]campaign.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading campaign dir %s: %w", s.dir, err)
	}
	var out []campaign.Summary
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, jsonSuffix) || strings.HasSuffix(name, jsonSuffix+ZstdSuffix)) {
			continue
		}
		c, err := readCampaign(filepath.Join(s.dir, name))
		if err != nil {
			s.logger.Warn("skipping unreadable campaign", zap.String("file", name), zap.Error(err))
			continue
		}
		out = append(out, c.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SavedAt.After(out[j].SavedAt) })
	return out, nil
}

// Close is a no-op; the store holds no open handles.
func (s *Store) Close() error { return nil }

func readCampaign(path string) (*campaign.Campaign, error) {
	raw, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	if err := validate(raw, true); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var c campaign.Campaign
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &c, nil
}

// ExportMap writes doc as a bare map document. A path ending in .zst is
// compressed.
func ExportMap(path string, doc grid.Document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding map: %w", err)
	}
	return writeDocument(path, b)
}

// ImportMap reads a bare map document, validating it against the map schema
// before decoding.
func ImportMap(path string) (grid.Document, error) {
	raw, err := readDocument(path)
	if err != nil {
		return grid.Document{}, err
	}
	if err := validate(raw, false); err != nil {
		return grid.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	var doc grid.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return grid.Document{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	return doc, nil
}
