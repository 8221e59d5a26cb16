package models

import (
	"gorm.io/gorm"
)

const defaultCandidatePhoto = "https://via.placeholder.com/150"

// Candidate belongs to exactly one election. VoteCount is a denormalized
// aggregate of the vote ledger; the ledger is the ground truth for repair.
type Candidate struct {
	gorm.Model
	ElectionID uint   `gorm:"column:election_id;not null;index" json:"election_id"`
	Name       string `gorm:"column:name;size:255;not null" json:"name"`
	Party      string `gorm:"column:party;size:255;not null" json:"party"`
	PhotoURL   string `gorm:"column:photo_url;size:512" json:"photo_url"`
	VoteCount  uint   `gorm:"column:vote_count;not null;default:0" json:"vote_count"`
}

// TableName specifies the table name for Candidate
func (Candidate) TableName() string {
	return "candidates"
}

func (c *Candidate) BeforeCreate(tx *gorm.DB) error {
	if c.PhotoURL == "" {
		c.PhotoURL = defaultCandidatePhoto
	}
	return nil
}

// AddCandidateRequest defines the multipart input for adding a candidate
type AddCandidateRequest struct {
	Name  string `form:"name" binding:"required"`
	Party string `form:"party" binding:"required"`
}
