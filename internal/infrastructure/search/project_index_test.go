package search

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synqit/synqit-backend/internal/domain/entity"
)

func TestNewProjectDocument(t *testing.T) {
	p := &entity.Project{
		ID:          "p1",
		OwnerID:     "u1",
		Name:        "Vault",
		ProjectType: entity.ProjectType("DEFI"),
		Blockchains: []entity.BlockchainPreference{{Blockchain: "ETHEREUM", IsPrimary: true}, {Blockchain: "SOLANA"}},
		UpdatedAt:   time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	doc := NewProjectDocument(p)
	assert.Equal(t, []string{"ETHEREUM", "SOLANA"}, doc.Blockchains)
	assert.Equal(t, []string{}, doc.Tags)
	assert.Equal(t, "DEFI", doc.ProjectType)
	assert.Equal(t, "2025-01-02T03:04:05Z", doc.UpdatedAt)
}

func TestDecodeHitIDs(t *testing.T) {
	body := `{"hits":{"total":{"value":2},"hits":[{"_id":"a","_score":2.1},{"_id":"b","_score":1.0}]}}`
	ids, err := decodeHitIDs(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestNewProjectIndexNilWithoutClient(t *testing.T) {
	assert.Nil(t, NewProjectIndex(nil, "projects", nil))
}
