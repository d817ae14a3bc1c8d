package vgasplash

import (
	"database/sql"

	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
)

// Cache stores previous conversions in a sqlite database, keyed by the SHA1
// of the input file and the options used.
type Cache struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewCache opens the cache database in file, creating it if necessary.
func NewCache(file string) (*Cache, error) {
	db, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS splash (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL, options TEXT NOT NULL, image BLOB NOT NULL, palette BLOB NOT NULL, UNIQUE(sha1, options))"); err != nil {
		db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, err
	}

	return &Cache{
		db:  db,
		enc: enc,
		dec: dec,
	}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	c.dec.Close()
	if err := c.enc.Close(); err != nil {
		c.db.Close()
		return err
	}
	return c.db.Close()
}

// Get returns the splash previously stored for the given SHA1 and options,
// or nil if there isn't one.
func (c *Cache) Get(sha, options string) (*Splash, error) {
	var img, pal []byte
	switch err := c.db.QueryRow("SELECT image, palette FROM splash WHERE sha1 = ? AND options = ?", sha, options).Scan(&img, &pal); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		var s Splash
		if s.Image, err = c.dec.DecodeAll(img, nil); err != nil {
			return nil, err
		}
		if s.Palette, err = c.dec.DecodeAll(pal, nil); err != nil {
			return nil, err
		}
		// Treat anything unusable as a miss, it will be replaced
		if !s.valid() {
			return nil, nil
		}
		return &s, nil
	default:
		return nil, err
	}
}

// Put stores the splash for the given SHA1 and options, replacing any
// existing entry.
func (c *Cache) Put(sha, options string, s *Splash) error {
	if _, err := c.db.Exec("INSERT OR REPLACE INTO splash (sha1, options, image, palette) VALUES (?, ?, ?, ?)", sha, options, c.enc.EncodeAll(s.Image, nil), c.enc.EncodeAll(s.Palette, nil)); err != nil {
		return err
	}
	return nil
}
