package models

import "time"

// ProspectStatus is the stage of a prospect within the outreach funnel.
type ProspectStatus string

const (
	StatusNew           ProspectStatus = "new"
	StatusContacted     ProspectStatus = "contacted"
	StatusConnected     ProspectStatus = "connected"
	StatusReplied       ProspectStatus = "replied"
	StatusNotInterested ProspectStatus = "not_interested"
	StatusConverted     ProspectStatus = "converted"
)

// Terminal reports whether no further funnel transitions are possible.
func (s ProspectStatus) Terminal() bool {
	return s == StatusConverted || s == StatusNotInterested
}

// AllStatuses lists every funnel stage in order, used for stats and validation.
func AllStatuses() []ProspectStatus {
	return []ProspectStatus{
		StatusNew, StatusContacted, StatusConnected,
		StatusReplied, StatusNotInterested, StatusConverted,
	}
}

type Prospect struct {
	ID              int64
	LinkedInURL     string // natural key, globally unique
	FullName        string
	Headline        string
	Location        string
	Industry        string
	Company         string
	Status          ProspectStatus
	Source          string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LastContactedAt *time.Time
}

// ConnectionStatus is the state of one outbound connection request.
type ConnectionStatus string

const (
	ConnectionPending   ConnectionStatus = "pending"
	ConnectionAccepted  ConnectionStatus = "accepted"
	ConnectionDeclined  ConnectionStatus = "declined"
	ConnectionWithdrawn ConnectionStatus = "withdrawn"
)

type ConnectionRequest struct {
	ID         int64
	ProspectID int64
	Note       string
	Status     ConnectionStatus
	SentAt     time.Time
	ResponseAt *time.Time
}

type MessageType string

const (
	MessageTypeConnectionNote MessageType = "connection_note"
	MessageTypeFollowUp       MessageType = "follow_up"
	MessageTypeReply          MessageType = "reply"
)

type Message struct {
	ID         int64
	ProspectID int64
	Content    string
	SentByUs   bool
	Type       MessageType
	SentAt     time.Time
	ReadAt     *time.Time
}

// Campaign is a named targeting configuration. The core consumes campaigns
// (templates, per-campaign caps) but never mutates them.
type Campaign struct {
	ID                 int64
	Name               string
	Description        string
	TargetKeywords     string
	TargetLocations    string
	TargetIndustries   string
	ConnectionTemplate string
	FollowUpTemplate   string
	DailyConnections   int
	DailyMessages      int
	Active             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
