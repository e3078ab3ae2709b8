package views

import (
	"errors"

	"github.com/clipstream/backend/internal/db"
)

// ErrScopeNotFound indicates the id or name scoping a view resolved to no
// entity at all. An empty result set under a valid scope is not an error; a
// scope that does not exist is.
var ErrScopeNotFound = errors.New("view scope not found")

// Composer builds every read model of the API. All methods take the viewer
// id explicitly; an empty viewer id renders every viewer-relative field
// false.
type Composer struct {
	pool db.Pool
}

// NewComposer constructs a Composer over the given connection pool.
func NewComposer(pool db.Pool) *Composer {
	return &Composer{pool: pool}
}

// videoSortColumns is the whitelist of caller-selectable feed sort fields,
// mapped onto projection columns. Anything else falls back to creation time.
var videoSortColumns = map[string]string{
	"createdAt": "v.created_at",
	"views":     "v.views",
	"duration":  "v.duration",
	"title":     "v.title",
}
