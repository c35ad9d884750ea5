// Package validation builds the validator used for credential input on both
// sides of the wire. It registers the custom tags:
//
//	notblank         string is non-empty after trimming whitespace
//	securityquestion string is one of questions.All()
//	answerdigest     string is a hex SHA-256 digest (cryptox.IsDigest)
package validation

import (
	"strings"

	"github.com/dmitrijs2005/resourcehub/internal/cryptox"
	"github.com/dmitrijs2005/resourcehub/internal/questions"
	"github.com/go-playground/validator/v10"
)

// New returns a validator with the custom tags registered.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("securityquestion", func(fl validator.FieldLevel) bool {
		return questions.IsKnown(fl.Field().String())
	})
	_ = v.RegisterValidation("answerdigest", func(fl validator.FieldLevel) bool {
		return cryptox.IsDigest(fl.Field().String())
	})

	return v
}

// FirstFailure returns the struct field name and tag of the first failed
// rule in err, or ok=false when err is not a validation failure.
func FirstFailure(err error) (field, tag string, ok bool) {
	verrs, isVerrs := err.(validator.ValidationErrors)
	if !isVerrs || len(verrs) == 0 {
		return "", "", false
	}
	return verrs[0].StructField(), verrs[0].Tag(), true
}
