package model

import "time"

// Event type names, also used as chaincode event names.
const (
	EventMember             = "MemberEvent"
	EventTradeNotification  = "TradeNotification"
	EventRequestInformation = "RequestInformationEvent"
	EventRemoveNotification = "RemoveNotification"
)

// Transaction names referenced by MemberEvent.
const (
	TxAuthorizeAccess = "AuthorizeAccess"
	TxRevokeAccess    = "RevokeAccess"
)

// Event is a notification describing a state change.
type Event interface {
	EventType() string
}

// MemberTransaction identifies the grant or revoke transaction behind a MemberEvent.
type MemberTransaction struct {
	Type          string    `json:"type"`          // AuthorizeAccess or RevokeAccess
	TransactionID string    `json:"transactionId"` // Fabric transaction ID
	Invoker       string    `json:"invoker"`       // Member whose list changed
	MemberID      string    `json:"memberId"`      // Member granted or revoked
	Timestamp     time.Time `json:"timestamp"`
}

type MemberEvent struct {
	MemberTransaction MemberTransaction `json:"memberTransaction"`
}

func (MemberEvent) EventType() string { return EventMember }

type TradeNotification struct {
	Information InformationRef `json:"information"`
}

func (TradeNotification) EventType() string { return EventTradeNotification }

type RequestInformationEvent struct {
	Date     time.Time `json:"date"`
	Creator  string    `json:"creator"`
	Assignee string    `json:"assignee"`
}

func (RequestInformationEvent) EventType() string { return EventRequestInformation }

type RemoveNotification struct {
	Information InformationRef `json:"information"`
}

func (RemoveNotification) EventType() string { return EventRemoveNotification }
