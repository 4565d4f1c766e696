package domain

import "time"

type Notification struct {
	ID            int32             `json:"id"`
	AccountID     int32             `json:"account_id"`
	Type          string            `json:"type"`
	Title         string            `json:"title"`
	Content       string            `json:"content"`
	ReferenceType string            `json:"reference_type"`
	ReferenceID   int32             `json:"reference_id"`
	IsRead        bool              `json:"is_read"`
	Attributes    map[string]string `json:"attributes"`
	CreatedOn     time.Time         `json:"created_on"`
}
