// Package validation concentra o validator das entradas dos formulários.
package validation

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	reIFSC   = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	reUPI    = regexp.MustCompile(`^[\w.\-]{3,}@[a-zA-Z]{3,}$`)
	reHolder = regexp.MustCompile(`^[a-zA-Z\s]{3,50}$`)
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "ifsc", reIFSC)
	mustRegister(v, "upi", reUPI)
	mustRegister(v, "holder", reHolder)
	return v
}

// Regras por regex aceitam vazio; presença é com required_*.
func mustRegister(v *validator.Validate, tag string, re *regexp.Regexp) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || re.MatchString(s)
	})
	if err != nil {
		panic(err)
	}
}

// Messages mapeia campo (nome Go) para a mensagem ao usuário.
// "Campo.tag" vence "Campo" quando as duas existem.
type Messages map[string]string

// Violation valida s e devolve a mensagem da primeira regra violada, na ordem
// dos campos da struct. String vazia quando s é válido.
func Violation(s any, msgs Messages) string {
	err := validate.Struct(s)
	if err == nil {
		return ""
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return err.Error()
	}
	fe := ves[0]
	if m, ok := msgs[fe.StructField()+"."+fe.Tag()]; ok {
		return m
	}
	if m, ok := msgs[fe.StructField()]; ok {
		return m
	}
	return fe.Error()
}
