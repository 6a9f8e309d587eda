package domain

// User is the profile returned by the backend's /users/me endpoint.
// Field names follow the backend's snake_case wire format.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsTeacher bool   `json:"is_teacher"`
}

// Session is the in-memory identity for one signed-in visitor. It is
// populated by the session store on login (or token re-validation) and is
// read-only everywhere else.
type Session struct {
	UserID    int
	Username  string
	IsTeacher bool
}

func (s *Session) IsStudent() bool {
	return s != nil && !s.IsTeacher
}
