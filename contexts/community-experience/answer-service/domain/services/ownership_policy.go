package services

import (
	"qaboard/contexts/community-experience/answer-service/domain/entities"
)

// EnsureAuthor returns denied unless caller authored answer. Author-less
// answers are owned by nobody.
func EnsureAuthor(answer entities.Answer, caller entities.SiteUser, denied error) error {
	if !answer.IsAuthoredBy(caller.UserID) {
		return denied
	}
	return nil
}
