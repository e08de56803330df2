// internal/domain/models/organizationclaim.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Claim statuses. NotClaimed is never persisted; it is what a status lookup
// returns when the user has no claim for an organization.
const (
	ClaimPending    = "pending"
	ClaimVerified   = "verified"
	ClaimRejected   = "rejected"
	ClaimNotClaimed = "not_claimed"
)

// VerifiedBySystem marks claims promoted by the email-domain rule.
const VerifiedBySystem = "system"

// VerificationEmailDomain is the verification method recorded for
// auto-verified claims.
const VerificationEmailDomain = "email_domain"

// OrganizationClaim is a user's assertion of membership in an organization.
// Organization is the name key used by the legacy claim path; OrganizationID
// is filled in when the name resolves to a known organization.
type OrganizationClaim struct {
	Organization       string              `bson:"organization" json:"organization"`
	OrganizationID     *primitive.ObjectID `bson:"organization_id,omitempty" json:"organization_id,omitempty"`
	ClaimedAt          time.Time           `bson:"claimed_at" json:"claimed_at"`
	VerificationMethod *string             `bson:"verification_method,omitempty" json:"verification_method,omitempty"`
	Status             string              `bson:"status" json:"status"`
	VerifiedAt         *time.Time          `bson:"verified_at,omitempty" json:"verified_at,omitempty"`
	VerifiedBy         string              `bson:"verified_by,omitempty" json:"verified_by,omitempty"`
}

// OrganizationRef pairs an organization's id with its display name.
type OrganizationRef struct {
	ID   primitive.ObjectID `bson:"id" json:"id"`
	Name string             `bson:"name" json:"name"`
}
