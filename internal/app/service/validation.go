package service

import (
	"errors"
	"html"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/common"
)

// User-facing messages shown as flashes.
const (
	MsgRequiredFields     = "¡Todos los campos son obligatorios!"
	MsgRequestFailed      = "¡Ocurrió un error al procesar la solicitud!"
	MsgPasswordMismatch   = "¡Las contraseñas no concuerdan!"
	MsgPasswordMinLength  = "¡La contraseña debe tener mínimo %d caracteres!"
	MsgPasswordTooLong    = "¡La contraseña debe tener máximo 72 caracteres!"
	MsgUsernameTooLong    = "¡El nombre de usuario debe tener máximo 40 caracteres!"
	MsgUsernameTaken      = "¡El nombre de usuario ya existe!"
	MsgUserRegistered     = "¡Usuario registrado!"
	MsgInvalidCredentials = "¡Usuario y/o contraseña invalidos!"
	MsgTitleTooLong       = "¡El título debe tener máximo 40 caracteres!"
	MsgPostCreated        = "¡Mensaje creado!"
	MsgPostUpdated        = "¡Mensaje editado!"
	MsgPostDeleted        = "¡Mensaje eliminado!"
	MsgRolesSaved         = "¡Cambios guardados!"
	MsgCSRFFailed         = "¡La solicitud no pudo ser procesada!"
)

// fieldMessages maps a failed field/tag pair to its flash message. Any
// "required" failure wins over the rest.
var fieldMessages = map[string]string{
	"Username.nohtml":   MsgRequestFailed,
	"Username.max":      MsgUsernameTooLong,
	"Password.maxbytes": MsgPasswordTooLong,
	"Password2.eqfield": MsgPasswordMismatch,
	"Title.max":         MsgTitleTooLong,
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Rejects values that would change under HTML escaping.
	_ = v.RegisterValidation("nohtml", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return html.EscapeString(s) == s
	})
	// Limits the encoded length, which is what bcrypt counts.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	return v
}

// validationError converts a validator failure into a UserError wrapping
// common.ErrValidation.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return common.NewUserError(common.ErrValidation, MsgRequiredFields)
		}
	}
	for _, fe := range verrs {
		if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
			return common.NewUserError(common.ErrValidation, msg)
		}
	}
	return common.NewUserError(common.ErrValidation, MsgRequestFailed)
}
