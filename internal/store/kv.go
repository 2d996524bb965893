package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// bucket names. The index bucket maps "templateId\x00artworkId" to the
// artwork id, giving prefix scans for "artworks by template".
var (
	bucketArtworks  = []byte("artworks")
	bucketDrafts    = []byte("drafts")
	bucketSettings  = []byte("settings")
	bucketByTemplat = []byte("idx_artworks_by_template")
)

const indexSep = "\x00"

// KV is the embedded key-value persistence gateway.
type KV struct {
	db *bolt.DB
}

// Open opens (or creates) the database file and ensures all buckets exist.
func Open(path string) (*KV, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketArtworks, bucketDrafts, bucketSettings, bucketByTemplat} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return &KV{db: db}, nil
}

// Close closes the underlying database.
func (k *KV) Close() error { return k.db.Close() }

func bucketFor(s Store) ([]byte, error) {
	switch s {
	case Artworks:
		return bucketArtworks, nil
	case Drafts:
		return bucketDrafts, nil
	case Settings:
		return bucketSettings, nil
	}
	return nil, fmt.Errorf("unknown store %q", s)
}

// Put stores a JSON-serialized value under key. Writes to the Artworks
// store maintain the template index, so the generic contract and
// SaveArtwork cannot drift apart.
func (k *KV) Put(s Store, key string, value any) error {
	name, err := bucketFor(s)
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", s, key, err)
	}
	return k.db.Update(func(tx *bolt.Tx) error {
		if s == Artworks {
			var a Artwork
			if err := json.Unmarshal(data, &a); err != nil {
				return fmt.Errorf("artworks store holds Artwork records: %w", err)
			}
			if err := reindexArtwork(tx, key, a.TemplateID); err != nil {
				return err
			}
		}
		return tx.Bucket(name).Put([]byte(key), data)
	})
}

// Get loads the value under key into out. The second return is false when
// the key does not exist.
func (k *KV) Get(s Store, key string, out any) (bool, error) {
	name, err := bucketFor(s)
	if err != nil {
		return false, err
	}
	var data []byte
	err = k.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(name).Get([]byte(key)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decoding %s/%s: %w", s, key, err)
	}
	return true, nil
}

// GetAll visits every value in the store as raw JSON.
func (k *KV) GetAll(s Store, fn func(key string, data []byte) error) error {
	name, err := bucketFor(s)
	if err != nil {
		return err
	}
	return k.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(name).ForEach(func(key, v []byte) error {
			return fn(string(key), append([]byte(nil), v...))
		})
	})
}

// Delete removes the value under key. Deleting a missing key is not an
// error.
func (k *KV) Delete(s Store, key string) error {
	name, err := bucketFor(s)
	if err != nil {
		return err
	}
	return k.db.Update(func(tx *bolt.Tx) error {
		if s == Artworks {
			if err := deleteTemplateIndex(tx, key); err != nil {
				return err
			}
		}
		return tx.Bucket(name).Delete([]byte(key))
	})
}

// SaveArtwork stores an artwork under its own id.
func (k *KV) SaveArtwork(a *Artwork) error {
	if a.ID == "" {
		return fmt.Errorf("artwork missing id")
	}
	return k.Put(Artworks, a.ID, a)
}

// ArtworkByID loads one artwork. The second return is false when absent.
func (k *KV) ArtworkByID(id string) (*Artwork, bool, error) {
	var a Artwork
	ok, err := k.Get(Artworks, id, &a)
	if err != nil || !ok {
		return nil, false, err
	}
	return &a, true, nil
}

// ArtworksByTemplate returns all artworks recorded for a template, via the
// secondary index.
func (k *KV) ArtworksByTemplate(templateID string) ([]Artwork, error) {
	var out []Artwork
	err := k.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketByTemplat).Cursor()
		prefix := []byte(templateID + indexSep)
		arts := tx.Bucket(bucketArtworks)
		for key, id := c.Seek(prefix); key != nil && bytes.HasPrefix(key, prefix); key, id = c.Next() {
			v := arts.Get(id)
			if v == nil {
				continue // index entry for a removed artwork; ignore
			}
			var a Artwork
			if err := json.Unmarshal(v, &a); err != nil {
				return fmt.Errorf("decoding artwork %s: %w", id, err)
			}
			out = append(out, a)
		}
		return nil
	})
	return out, err
}

// SaveDraft overwrites the autosave draft for a template.
func (k *KV) SaveDraft(d *Draft) error {
	if d.TemplateID == "" {
		return fmt.Errorf("draft missing template id")
	}
	return k.Put(Drafts, d.TemplateID, d)
}

// DraftByTemplate loads the autosave draft for a template, if any.
func (k *KV) DraftByTemplate(templateID string) (*Draft, bool, error) {
	var d Draft
	ok, err := k.Get(Drafts, templateID, &d)
	if err != nil || !ok {
		return nil, false, err
	}
	return &d, true, nil
}

// DeleteDraft removes the autosave draft for a template.
func (k *KV) DeleteDraft(templateID string) error {
	return k.Delete(Drafts, templateID)
}

// reindexArtwork points the template index at an artwork's current template.
// Records without a template id carry no index entry.
func reindexArtwork(tx *bolt.Tx, artworkID, templateID string) error {
	if err := deleteTemplateIndex(tx, artworkID); err != nil {
		return err
	}
	if templateID == "" {
		return nil
	}
	idxKey := []byte(templateID + indexSep + artworkID)
	return tx.Bucket(bucketByTemplat).Put(idxKey, []byte(artworkID))
}

func deleteTemplateIndex(tx *bolt.Tx, artworkID string) error {
	// The artwork's template id may have changed or be unknown; scan for
	// index entries pointing at this id. Index stays small, so a full
	// scan is acceptable.
	idx := tx.Bucket(bucketByTemplat)
	var stale [][]byte
	err := idx.ForEach(func(key, id []byte) error {
		if string(id) == artworkID {
			stale = append(stale, append([]byte(nil), key...))
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, key := range stale {
		if err := idx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
