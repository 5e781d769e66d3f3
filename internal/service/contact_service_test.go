package service

import (
	"context"
	"testing"

	"wasim/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchContacts(t *testing.T) {
	sim, _ := newTestSimulator(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"ali", []string{aliceJID}},
		{"BOBBY", []string{bobJID}},
		{"smith", []string{aliceJID}},
		{"555", []string{aliceJID, bobJID, danJID}},
		{"(415) 555", []string{aliceJID, bobJID}},
		{"carol", []string{}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := sim.SearchContacts(context.Background(), models.SearchContactsRequest{Query: tt.query})
			require.NoError(t, err)
			require.NotNil(t, resp.Contacts)

			got := make([]string, len(resp.Contacts))
			for i, c := range resp.Contacts {
				got[i] = c.JID
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
