package models

// AdminUserRow is one line of the admin user list.
type AdminUserRow struct {
	ID                    int64  `json:"id"`
	Username              string `json:"username"`
	Email                 string `json:"email"`
	DocumentsUploaded     int    `json:"documents_uploaded"`
	TotalDocumentsAllowed int    `json:"total_documents_allowed"`
}

// LimitEdit is the pending quota edit for one row. A nil Value means the
// input box was cleared.
type LimitEdit struct {
	Value   *int
	Changed bool
}
