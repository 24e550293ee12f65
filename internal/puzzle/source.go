// Package puzzle loads puzzle index and puzzle assets.
package puzzle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuichess/internal/model"
)

// IndexFile is the name of the index asset.
const IndexFile = "index.json"

var (
	// ErrNotFound is returned when an asset does not exist.
	ErrNotFound = errors.New("puzzle asset not found")
	// ErrInvalidRecord is returned when a puzzle asset is missing required fields.
	ErrInvalidRecord = errors.New("invalid puzzle record")
)

// Source provides the index and individual puzzles.
type Source interface {
	LoadIndex(ctx context.Context) (model.Index, error)
	LoadPuzzle(ctx context.Context, id string) (model.PuzzleRecord, error)
}

// Open returns an HTTP source for http(s) locations and a directory source otherwise.
func Open(location string) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("puzzle location is empty")
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, nil)
	}
	return NewDirSource(location), nil
}

// DirSource reads assets from a local directory.
type DirSource struct {
	dir string
}

// NewDirSource returns a source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Dir returns the asset directory.
func (s *DirSource) Dir() string {
	return s.dir
}

// LoadIndex implements Source.
func (s *DirSource) LoadIndex(context.Context) (model.Index, error) {
	data, err := s.read(IndexFile)
	if err != nil {
		return model.Index{}, err
	}
	return decodeIndex(data)
}

// LoadPuzzle implements Source.
func (s *DirSource) LoadPuzzle(_ context.Context, id string) (model.PuzzleRecord, error) {
	if err := checkID(id); err != nil {
		return model.PuzzleRecord{}, err
	}
	data, err := s.read(id + ".json")
	if err != nil {
		return model.PuzzleRecord{}, err
	}
	return decodePuzzle(id, data)
}

func (s *DirSource) read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// HTTPSource fetches assets below a base URL.
type HTTPSource struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPSource returns a source for base. A nil client uses a 30s timeout.
func NewHTTPSource(base string, client *http.Client) (*HTTPSource, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid puzzle url: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPSource{base: u, client: client}, nil
}

// LoadIndex implements Source.
func (s *HTTPSource) LoadIndex(ctx context.Context) (model.Index, error) {
	data, err := s.fetch(ctx, IndexFile)
	if err != nil {
		return model.Index{}, err
	}
	return decodeIndex(data)
}

// LoadPuzzle implements Source.
func (s *HTTPSource) LoadPuzzle(ctx context.Context, id string) (model.PuzzleRecord, error) {
	if err := checkID(id); err != nil {
		return model.PuzzleRecord{}, err
	}
	data, err := s.fetch(ctx, url.PathEscape(id)+".json")
	if err != nil {
		return model.PuzzleRecord{}, err
	}
	return decodePuzzle(id, data)
}

func (s *HTTPSource) fetch(ctx context.Context, name string) ([]byte, error) {
	ref, err := url.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("invalid asset name %q: %w", name, err)
	}
	target := s.base.ResolveReference(ref).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status for %s: %s", name, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func checkID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("%w: bad id %q", ErrInvalidRecord, id)
	}
	return nil
}

func decodeIndex(data []byte) (model.Index, error) {
	var idx model.Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return model.Index{}, fmt.Errorf("failed to decode index: %w", err)
	}
	return idx, nil
}

func decodePuzzle(id string, data []byte) (model.PuzzleRecord, error) {
	var rec model.PuzzleRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.PuzzleRecord{}, fmt.Errorf("failed to decode puzzle %s: %w", id, err)
	}
	if rec.ID == "" {
		rec.ID = id
	}
	if err := Validate(rec); err != nil {
		return model.PuzzleRecord{}, err
	}
	return rec, nil
}

// Validate checks the fields a session needs.
func Validate(rec model.PuzzleRecord) error {
	switch {
	case strings.TrimSpace(rec.Position) == "":
		return fmt.Errorf("%w %s: missing position", ErrInvalidRecord, rec.ID)
	case len(rec.BestMove) != 4 && len(rec.BestMove) != 5:
		return fmt.Errorf("%w %s: best move %q", ErrInvalidRecord, rec.ID, rec.BestMove)
	case !rec.TurnColor.Valid():
		return fmt.Errorf("%w %s: turn color %q", ErrInvalidRecord, rec.ID, rec.TurnColor)
	}
	return nil
}
