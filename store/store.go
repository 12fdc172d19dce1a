package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"sennabot/models"
)

// cacheTTL bounds how long a guild document is served from memory before
// being re-read from disk.
const cacheTTL = 5 * time.Minute

type cacheEntry struct {
	doc      *models.GuildDocument
	loadedAt time.Time
}

// Store persists guild economy documents as JSON files under
// <dataDir>/guilds/<guildID>.json with a .backup sibling per file.
// Reads degrade to an empty document on failure; writes report errors.
type Store struct {
	dataDir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	cache map[string]*cacheEntry

	settingsMu sync.Mutex
	settings   *models.BotSettings

	permsMu sync.Mutex
	perms   map[string]*models.GuildPermissions

	now func() time.Time
}

// New creates a store rooted at dataDir, creating the directory layout if
// needed.
func New(dataDir string) (*Store, error) {
	for _, dir := range []string{guildsDir(dataDir), configDir(dataDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
		}
	}
	return &Store{
		dataDir: dataDir,
		locks:   make(map[string]*sync.Mutex),
		cache:   make(map[string]*cacheEntry),
		now:     time.Now,
	}, nil
}

func guildsDir(dataDir string) string { return filepath.Join(dataDir, "guilds") }
func configDir(dataDir string) string { return filepath.Join(dataDir, "config") }

func (s *Store) guildPath(guildID string) string {
	return filepath.Join(guildsDir(s.dataDir), guildID+".json")
}

// Lock returns the mutex serializing compound read-modify-write cycles for
// a guild. Callers hold it across Guild + SaveGuild.
func (s *Store) Lock(guildID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[guildID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[guildID] = l
	}
	return l
}

// Guild returns a deep copy of the guild's document. Missing files yield an
// empty document; corrupt files fall back to the .backup sibling, then to an
// empty document. Guild never fails the caller.
func (s *Store) Guild(guildID string) *models.GuildDocument {
	s.mu.Lock()
	if entry, ok := s.cache[guildID]; ok && s.now().Sub(entry.loadedAt) < cacheTTL {
		doc := entry.doc.Clone()
		s.mu.Unlock()
		return doc
	}
	s.mu.Unlock()

	doc := s.readGuildFile(guildID)

	s.mu.Lock()
	s.cache[guildID] = &cacheEntry{doc: doc.Clone(), loadedAt: s.now()}
	s.mu.Unlock()

	return doc
}

func (s *Store) readGuildFile(guildID string) *models.GuildDocument {
	path := s.guildPath(guildID)

	doc, err := decodeGuildFile(path)
	if err == nil {
		return doc
	}
	if os.IsNotExist(err) {
		return models.NewGuildDocument()
	}

	log.WithFields(log.Fields{
		"guildID": guildID,
		"error":   err,
	}).Warn("Guild data unreadable, trying backup")

	doc, backupErr := decodeGuildFile(path + ".backup")
	if backupErr == nil {
		return doc
	}

	log.WithFields(log.Fields{
		"guildID": guildID,
		"error":   backupErr,
	}).Error("Guild backup unreadable, starting from empty document")
	return models.NewGuildDocument()
}

func decodeGuildFile(path string) (*models.GuildDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc := models.NewGuildDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if doc.Users == nil {
		doc.Users = make(map[string]*models.UserAccount)
	}
	return doc, nil
}

// SaveGuild atomically persists the document and refreshes the cache. The
// previous file is copied to <file>.backup before being replaced.
func (s *Store) SaveGuild(guildID string, doc *models.GuildDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode guild %s: %w", guildID, err)
	}

	if err := writeAtomic(s.guildPath(guildID), data); err != nil {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"error":   err,
		}).Error("Failed to persist guild data")
		return err
	}

	s.mu.Lock()
	s.cache[guildID] = &cacheEntry{doc: doc.Clone(), loadedAt: s.now()}
	s.mu.Unlock()
	return nil
}

// GuildIDs lists every guild with a persisted document.
func (s *Store) GuildIDs() []string {
	entries, err := os.ReadDir(guildsDir(s.dataDir))
	if err != nil {
		log.WithField("error", err).Warn("Failed to list guild data directory")
		return nil
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids
}

// writeAtomic writes data via a temp file in the target directory, fsyncs,
// then renames over the destination. An existing destination is copied to
// <path>.backup first.
func writeAtomic(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		if err := copyFile(path, path+".backup"); err != nil {
			return fmt.Errorf("failed to back up %s: %w", path, err)
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
