package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDocumentTypeValid(t *testing.T) {
	assert.True(t, DocumentTypeInbound.Valid())
	assert.True(t, DocumentTypeOutbound.Valid())
	assert.False(t, DocumentType("memo").Valid())
	assert.False(t, DocumentType("").Valid())
}

func TestActorIsAdmin(t *testing.T) {
	assert.True(t, Actor{ID: "a", Role: RoleAdmin}.IsAdmin())
	assert.False(t, Actor{ID: "u", Role: RoleUser}.IsAdmin())
	assert.False(t, Actor{}.IsAdmin())
}

func TestDocumentOwnership(t *testing.T) {
	doc := Document{UploadedBy: "user-1"}

	assert.True(t, doc.OwnedBy(Actor{ID: "user-1", Role: RoleUser}))
	assert.False(t, doc.OwnedBy(Actor{ID: "user-2", Role: RoleUser}))
}

func TestDocumentDeleted(t *testing.T) {
	now := time.Now()

	assert.False(t, (&Document{}).Deleted())
	assert.True(t, (&Document{DeletedAt: &now}).Deleted())
}

func TestDocumentJSONReferenceID(t *testing.T) {
	// Reference ids serialize as strings so clients never lose precision.
	raw, err := json.Marshal(Document{Type: DocumentTypeInbound, ReferenceID: 7})
	assert.NoError(t, err)
	assert.Contains(t, string(raw), `"reference_id":"7"`)
}
