package profile

import "context"

// Declaration is a per-user signed statement rendered on the CV's
// declaration page when the template requests it.
type Declaration struct {
	UserID   string
	Title    string
	Body     string
	SignedAt string
}

// Affiliation is one appointment line rendered in the CV header.
type Affiliation struct {
	UserID     string
	Role       string
	Department string
	StartYear  int
	EndYear    int
	Primary    bool
}

type Repository interface {
	GetDeclarations(ctx context.Context, userID string) ([]Declaration, error)
	GetAffiliations(ctx context.Context, userID string) ([]Affiliation, error)
}
