package validation

import (
	"testing"

	"github.com/dmitrijs2005/resourcehub/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type form struct {
	Email    string `validate:"required,email"`
	Question string `validate:"securityquestion"`
	Answer   string `validate:"notblank"`
	Digest   string `validate:"omitempty,answerdigest"`
}

func TestNew_AcceptsValidForm(t *testing.T) {
	v := New()
	err := v.Struct(form{
		Email:    "a@b.com",
		Question: "What city were you born in?",
		Answer:   "Durham",
		Digest:   cryptox.HashSecurityAnswer("Durham"),
	})
	require.NoError(t, err)
}

func TestNew_CustomTags(t *testing.T) {
	v := New()
	base := form{Email: "a@b.com", Question: "What city were you born in?", Answer: "x"}

	tests := []struct {
		name      string
		mutate    func(f *form)
		wantField string
		wantTag   string
	}{
		{"unknown question", func(f *form) { f.Question = "Who?" }, "Question", "securityquestion"},
		{"blank answer", func(f *form) { f.Answer = "   " }, "Answer", "notblank"},
		{"bad digest", func(f *form) { f.Digest = "1234" }, "Digest", "answerdigest"},
		{"bad email", func(f *form) { f.Email = "nope" }, "Email", "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := base
			tt.mutate(&f)
			field, tag, ok := FirstFailure(v.Struct(f))
			require.True(t, ok)
			assert.Equal(t, tt.wantField, field)
			assert.Equal(t, tt.wantTag, tag)
		})
	}
}

func TestFirstFailure_NotValidationError(t *testing.T) {
	_, _, ok := FirstFailure(nil)
	assert.False(t, ok)
	_, _, ok = FirstFailure(assert.AnError)
	assert.False(t, ok)
}
