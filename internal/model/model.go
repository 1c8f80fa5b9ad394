// Package model contains domain models/data structures.
// Pure data types shared across layers; no persistence or transport coupling.
package model

// DocumentType partitions the reference-number namespace.
type DocumentType string

const (
	DocumentTypeInbound  DocumentType = "inbound"
	DocumentTypeOutbound DocumentType = "outbound"
)

// Valid reports whether t is one of the known document types.
func (t DocumentType) Valid() bool {
	return t == DocumentTypeInbound || t == DocumentTypeOutbound
}

// DocumentTypes lists all known types, in display order.
func DocumentTypes() []DocumentType {
	return []DocumentType{DocumentTypeInbound, DocumentTypeOutbound}
}

// Role of an acting user, resolved by the auth layer in front of this service.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Actor is the already-authenticated caller of an operation.
// This service never parses credentials; it trusts the resolved identity.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// IsAdmin reports whether the actor may act on resources it does not own.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
