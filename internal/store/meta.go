package store

import (
	"strconv"
	"time"
)

// Meta describes how a stored table was produced.
type Meta struct {
	Platform      string
	UserType      string
	Root          string
	Public        bool
	SchemaVersion int
	Entries       int
	CreatedAt     time.Time
}

func (m Meta) pairs() map[string]string {
	return map[string]string{
		"platform":       m.Platform,
		"user_type":      m.UserType,
		"root":           m.Root,
		"public":         strconv.FormatBool(m.Public),
		"schema_version": strconv.Itoa(m.SchemaVersion),
		"entries":        strconv.Itoa(m.Entries),
		"created_at":     m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// metaFromPairs is lenient: tables from older versions may lack any key.
func metaFromPairs(pairs map[string]string) Meta {
	m := Meta{
		Platform: pairs["platform"],
		UserType: pairs["user_type"],
		Root:     pairs["root"],
	}
	m.Public, _ = strconv.ParseBool(pairs["public"])
	m.SchemaVersion, _ = strconv.Atoi(pairs["schema_version"])
	if m.SchemaVersion == 0 {
		m.SchemaVersion = 1
	}
	m.Entries, _ = strconv.Atoi(pairs["entries"])
	m.CreatedAt, _ = time.Parse(time.RFC3339, pairs["created_at"])
	return m
}
