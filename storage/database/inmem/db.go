// Package inmemdb provides map-backed repositories for tests and local
// prototyping. They honor the same contracts as the SQL repositories.
package inmemdb

import (
	"strings"
	"sync"

	"github.com/trezcool/walimu/core"
	"github.com/trezcool/walimu/core/content"
	"github.com/trezcool/walimu/core/profile"
	"github.com/trezcool/walimu/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users    map[string]*user.User
	profiles map[string]*profile.Profile

	research     map[string]*content.Research
	activities   map[string]*content.Activity
	publications map[string]*content.Publication
	courses      map[string]*content.Course
	education    map[string]*content.Education
	articles     map[string]*content.Article
	attachments  map[string]*content.Attachment
}

func NewDB() *DB {
	return &DB{
		users:        make(map[string]*user.User),
		profiles:     make(map[string]*profile.Profile),
		research:     make(map[string]*content.Research),
		activities:   make(map[string]*content.Activity),
		publications: make(map[string]*content.Publication),
		courses:      make(map[string]*content.Course),
		education:    make(map[string]*content.Education),
		articles:     make(map[string]*content.Article),
		attachments:  make(map[string]*content.Attachment),
	}
}

// Clear empties every table. Handy between test cases.
func (db *DB) Clear() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.users = make(map[string]*user.User)
	db.profiles = make(map[string]*profile.Profile)
	db.research = make(map[string]*content.Research)
	db.activities = make(map[string]*content.Activity)
	db.publications = make(map[string]*content.Publication)
	db.courses = make(map[string]*content.Course)
	db.education = make(map[string]*content.Education)
	db.articles = make(map[string]*content.Article)
	db.attachments = make(map[string]*content.Attachment)
}

func matches(needle string, haystack ...string) bool {
	if needle == "" {
		return true
	}
	needle = strings.ToLower(needle)
	for _, s := range haystack {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

// pageBounds clamps a page window to [0, total); an out-of-range page yields
// an empty window while the caller still reports the true total.
func pageBounds(p core.Pagination, total int) (int, int) {
	p.Clean()
	lo := p.Offset()
	if lo >= total {
		return 0, 0
	}
	hi := lo + p.Limit
	if hi > total {
		hi = total
	}
	return lo, hi
}
