package services

import (
	"context"

	"github.com/dmitrijs2005/docchat/internal/client/client"
	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/client/store"
)

// CitationResolver turns a citation into a URL the user can open.
type CitationResolver struct {
	api   client.API
	store *store.Store
}

// NewCitationResolver returns a resolver.
func NewCitationResolver(api client.API, st *store.Store) *CitationResolver {
	return &CitationResolver{api: api, store: st}
}

// Open returns the URL behind c. Document citations are exchanged for a
// signed link; internet citations carry their URL; unknown citations are
// inert and yield ErrUnknownCitation without any call.
func (r *CitationResolver) Open(ctx context.Context, c models.Citation) (string, error) {
	switch c := c.(type) {
	case models.InternetCitation:
		return c.URL, nil
	case models.DocumentCitation:
		p := r.store.Profile()
		if p == nil {
			return "", ErrNoProfile
		}
		doc, err := r.api.CitationDocument(ctx, p.ID, c.DocID, c.Page)
		if err != nil {
			return "", err
		}
		if doc.URL == "" {
			return "", ErrNoDocumentURL
		}
		return doc.URL, nil
	default:
		return "", ErrUnknownCitation
	}
}
