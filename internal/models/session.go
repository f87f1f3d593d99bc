package models

// Session is the identity of the shopper behind a request.
type Session struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Token    string `json:"-"`
}

// Authenticated reports whether the session carries a user and a token.
func (s Session) Authenticated() bool {
	return s.UserID != "" && s.Token != ""
}

// Credential is a locally known shopper account for the in-memory backend.
type Credential struct {
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
