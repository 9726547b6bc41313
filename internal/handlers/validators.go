package handlers

import (
	"regexp"
	"sync"

	"github.com/01moynul/relique/internal/verify"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:-]{0,99}$`)

// RegisterValidators adds our custom binding rules to gin's validator:
//
//	verifycode  a certificate code that normalises (see verify.Normalize)
//	storagekey  a short identifier for drafts and saved views
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterValidation("verifycode", func(fl validator.FieldLevel) bool {
			return verify.Valid(fl.Field().String())
		})
		v.RegisterValidation("storagekey", func(fl validator.FieldLevel) bool {
			return keyPattern.MatchString(fl.Field().String())
		})
	})
}

// validKey applies the storagekey rule to a path parameter.
func validKey(key string) bool {
	return keyPattern.MatchString(key)
}
