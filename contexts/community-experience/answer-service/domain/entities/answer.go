package entities

import "time"

// Answer references its question, author and voters by id. AuthorID is nil
// for answers created without an author (seeded data).
type Answer struct {
	AnswerID   int64
	QuestionID int64
	AuthorID   *int64
	Content    string
	CreatedAt  time.Time
	ModifiedAt *time.Time
	VoterIDs   []int64
}

func (a Answer) VoteCount() int {
	return len(a.VoterIDs)
}

func (a Answer) HasVoter(userID int64) bool {
	for _, voterID := range a.VoterIDs {
		if voterID == userID {
			return true
		}
	}
	return false
}

func (a Answer) IsAuthoredBy(userID int64) bool {
	return a.AuthorID != nil && *a.AuthorID == userID
}

type Question struct {
	QuestionID int64
	Subject    string
}

type SiteUser struct {
	UserID   int64
	Username string
}

type AnswerOrder string

const (
	AnswerOrderCreated   AnswerOrder = "created"
	AnswerOrderVoteCount AnswerOrder = "vote"
)

type AnswerPage struct {
	Items         []Answer
	Page          int
	Size          int
	TotalElements int64
	TotalPages    int
}

func (p AnswerPage) HasNext() bool {
	return p.Page+1 < p.TotalPages
}

func (p AnswerPage) HasPrevious() bool {
	return p.Page > 0
}

// NewAnswerPage computes page totals for a slice already cut to the window.
func NewAnswerPage(items []Answer, page int, size int, total int64) AnswerPage {
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	if items == nil {
		items = []Answer{}
	}
	return AnswerPage{
		Items:         items,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}
