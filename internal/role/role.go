package role

type Role string

const (
	Government Role = "government"
	School     Role = "school"
	Student    Role = "student"
)

// All lists the roles from the highest level down.
var All = []Role{Government, School, Student}

var levels = map[Role]int{
	Student:    1,
	School:     2,
	Government: 3,
}

// Level returns the position of r in the authority order. Unknown roles are 0.
func Level(r Role) int {
	return levels[r]
}

func Parse(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

func (r Role) Valid() bool {
	_, ok := levels[r]
	return ok
}

func (r Role) String() string {
	return string(r)
}

// CookieName is the browser cookie that carries a page session for r.
func (r Role) CookieName() string {
	return string(r) + "_token"
}

func (r Role) Prefix() string {
	return "/" + string(r)
}

func (r Role) LoginPage() string {
	return r.Prefix() + "/auth/login"
}

func (r Role) HomePage() string {
	return r.Prefix() + "/home"
}
