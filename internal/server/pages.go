package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mehmetcc/mbg/internal/httpx"
	"github.com/mehmetcc/mbg/internal/role"
)

type action struct {
	Method string   `json:"method"`
	Href   string   `json:"href"`
	Fields []string `json:"fields,omitempty"`
}

// page describes a public page by the API action it drives.
type page struct {
	Page    string   `json:"page"`
	Role    string   `json:"role,omitempty"`
	Action  *action  `json:"action,omitempty"`
	Links   []string `json:"links,omitempty"`
	Message string   `json:"message,omitempty"`
}

func landingPage(w http.ResponseWriter, r *http.Request) {
	links := make([]string, 0, len(role.All))
	for _, rl := range role.All {
		links = append(links, rl.LoginPage())
	}
	httpx.WriteJSON(w, http.StatusOK, page{Page: "landing", Links: links})
}

func loginPage(w http.ResponseWriter, r *http.Request) {
	rl, ok := role.Parse(chi.URLParam(r, "role"))
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
			Code:    httpx.ErrNotFound,
			Message: "page not found",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page{
		Page: "login",
		Role: rl.String(),
		Action: &action{
			Method: http.MethodPost,
			Href:   "/api/auth/" + rl.String() + "/login",
			Fields: []string{"identifier", "password"},
		},
	})
}

func studentRegisterPage(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, page{
		Page: "register",
		Role: role.Student.String(),
		Action: &action{
			Method: http.MethodPost,
			Href:   "/api/auth/student/register",
			Fields: []string{"school_npsn", "student_number", "name", "class", "grade", "password"},
		},
	})
}

// Schools cannot sign themselves up; the page points at their government.
func schoolRegisterPage(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, page{
		Page:    "register",
		Role:    role.School.String(),
		Message: "schools are registered by their provincial government",
		Links:   []string{role.School.LoginPage()},
	})
}
