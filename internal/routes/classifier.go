package routes

import (
	"strings"

	"github.com/mehmetcc/mbg/internal/role"
)

type Classification struct {
	RequiresAuth bool
	Role         role.Role
}

// Table maps page paths to the role that may open them. It is built once at
// startup and only read afterwards.
type Table struct {
	public   map[string]struct{}
	prefixes []prefixGroup
	fallback role.Role
}

type prefixGroup struct {
	prefix string
	role   role.Role
}

// DefaultTable has one prefix group per role, plus the root, every login
// page and the registration pages as public routes.
func DefaultTable() *Table {
	public := []string{"/", "/school/auth/register", "/student/auth/register"}
	prefixes := make([]prefixGroup, 0, len(role.All))
	for _, r := range role.All {
		public = append(public, r.LoginPage())
		prefixes = append(prefixes, prefixGroup{prefix: r.Prefix(), role: r})
	}
	return newTable(public, prefixes, role.Student)
}

func newTable(public []string, prefixes []prefixGroup, fallback role.Role) *Table {
	t := &Table{
		public:   make(map[string]struct{}, len(public)),
		prefixes: prefixes,
		fallback: fallback,
	}
	for _, p := range public {
		t.public[normalize(p)] = struct{}{}
	}
	return t
}

// Classify reports whether path needs a session and for which role. Paths
// outside every prefix group fall back to the lowest role.
func (t *Table) Classify(path string) Classification {
	path = normalize(path)
	if _, ok := t.public[path]; ok {
		return Classification{RequiresAuth: false}
	}
	if r, ok := t.match(path); ok {
		return Classification{RequiresAuth: true, Role: r}
	}
	return Classification{RequiresAuth: true, Role: t.fallback}
}

// LoginPageFor is the login page of the role owning path.
func (t *Table) LoginPageFor(path string) string {
	if r, ok := t.match(normalize(path)); ok {
		return r.LoginPage()
	}
	return t.fallback.LoginPage()
}

func (t *Table) match(path string) (role.Role, bool) {
	for _, g := range t.prefixes {
		if path == g.prefix || strings.HasPrefix(path, g.prefix+"/") {
			return g.role, true
		}
	}
	return "", false
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}
