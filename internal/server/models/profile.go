package models

import "time"

// Profile is the security profile attached to an account. The answer is
// stored only as the digest computed by the client.
type Profile struct {
	ID                 string `validate:"required,uuid"`
	FullName           string `validate:"notblank"`
	SecurityQuestion   string `validate:"securityquestion"`
	SecurityAnswerHash string `validate:"answerdigest"`
	LastLogin          *time.Time
	CreatedAt          time.Time
}
