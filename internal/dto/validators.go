package dto

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/infoamous-source/kiosk-sub001/internal/model"
)

// RegisterValidators adds the school_id and track_id tags to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return registerOn(v)
}

func registerOn(v *validator.Validate) error {
	if err := v.RegisterValidation("school_id", validSchoolID); err != nil {
		return err
	}
	return v.RegisterValidation("track_id", validSchoolID)
}

func validSchoolID(fl validator.FieldLevel) bool {
	return model.IsValidSchool(model.SchoolID(fl.Field().String()))
}
