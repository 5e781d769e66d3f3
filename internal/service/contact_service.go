package service

import (
	"context"

	"wasim/internal/models"

	"github.com/sirupsen/logrus"
)

// SearchContacts matches WhatsApp contacts by name or by phone digits
func (s *Simulator) SearchContacts(ctx context.Context, req models.SearchContactsRequest) (*models.SearchContactsResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := s.directory.Search(req.Query)

	LogWithContext(ctx, s.logger, "search_contacts", logrus.Fields{
		LogFieldQuery:        req.Query,
		LogFieldTotalMatches: len(results),
	}).Debug("Searched contacts")

	return &models.SearchContactsResponse{Contacts: results}, nil
}
