package models

// AuthUser is the display identity decoded from the ID token.
type AuthUser struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// AuthIdentity is the auth slice of the session store. The zero value is the
// logged-out state.
type AuthIdentity struct {
	IsAuthenticated bool      `json:"isAuthenticated"`
	User            *AuthUser `json:"user"`
	IDToken         string    `json:"idToken,omitempty"`
	AuthToken       string    `json:"authToken,omitempty"`
	Error           string    `json:"error,omitempty"`
}

// DefaultDocumentLimit applies when a profile carries no explicit quota.
const DefaultDocumentLimit = 10

// UserProfile is the server-issued record returned by the login endpoint.
// An ID of zero means the server did not identify the user.
type UserProfile struct {
	ID                    int64  `json:"id"`
	Username              string `json:"username"`
	Email                 string `json:"email"`
	Role                  string `json:"role"`
	CreatedAt             string `json:"created_at"`
	DocumentsUploaded     int    `json:"documents_uploaded"`
	TotalDocumentsAllowed *int   `json:"total_documents_allowed"`
}

// DocumentLimit returns the upload quota, falling back to
// DefaultDocumentLimit when the server sent none.
func (p *UserProfile) DocumentLimit() int {
	if p == nil || p.TotalDocumentsAllowed == nil {
		return DefaultDocumentLimit
	}
	return *p.TotalDocumentsAllowed
}
