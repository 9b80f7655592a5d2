package models

import (
	"time"

	"github.com/google/uuid"
)

type InviteMethod string

const (
	InviteMethodEmail InviteMethod = "email"
	InviteMethodLink  InviteMethod = "link"
)

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "PENDING"
	InviteStatusAccepted InviteStatus = "ACCEPTED"
	InviteStatusApproved InviteStatus = "APPROVED"
	InviteStatusRejected InviteStatus = "REJECTED"
)

type Invitation struct {
	ID                     uuid.UUID    `json:"id"`
	AccountID              int64        `json:"account_id"`
	Method                 InviteMethod `json:"invite_method"`
	Token                  string       `json:"invite_token"`
	EmailAddress           *string      `json:"email_address,omitempty"`
	LicenseCount           int          `json:"license_count"`
	AcceptedCount          int          `json:"accepted_count"`
	Moderation             bool         `json:"moderation"`
	EmailDomainRestriction *string      `json:"email_domain_restriction,omitempty"`
	ExpirationDate         *time.Time   `json:"expiration_date,omitempty"`
	Status                 InviteStatus `json:"status"`
	CreatedAt              time.Time    `json:"created_at"`
	UpdatedAt              time.Time    `json:"updated_at"`
}
