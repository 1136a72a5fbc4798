package models

import "time"

const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 5
)

// Review is a customer testimonial; only approved reviews are shown publicly.
type Review struct {
	ID           int64     `db:"id" json:"id"`
	ReviewerName string    `db:"reviewer_name" json:"reviewer_name"`
	Rating       int       `db:"rating" json:"rating"`
	Body         string    `db:"body" json:"body"`
	Source       string    `db:"source" json:"source"` // e.g. Google, Zomato, Walk-in
	IsApproved   bool      `db:"is_approved" json:"is_approved"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type ReviewInput struct {
	ReviewerName string
	Rating       int
	Body         string
	Source       string
	IsApproved   bool
}

func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// Stars renders the rating as filled stars for templates and bot messages.
func (r Review) Stars() string {
	if !ValidRating(r.Rating) {
		return ""
	}
	s := ""
	for i := 0; i < r.Rating; i++ {
		s += "★"
	}
	return s
}
