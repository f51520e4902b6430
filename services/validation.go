package services

import (
	"errors"
	"reflect"
	"strings"

	"commerce-service/models"

	"github.com/go-playground/validator/v10"
)

// fieldMessages holds the user-facing message per field and failed rule.
// Rules without an entry fall back to the field entry under "".
var fieldMessages = map[string]map[string]string{
	"name": {
		"": "Nome precisa ter de 3 a 80 caracteres",
	},
	"description": {
		"": "Descrição precisa ter no mínimo 10 caracteres",
	},
	"price": {
		"": "O preço deve ser positivo",
	},
	"categories": {
		"":   "Deve ter pelo menos uma categoria",
		"gt": "Categoria inválida",
	},
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct collects every violation, in field declaration order.
func validateStruct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &models.ValidationError{}
	seen := map[string]bool{}
	for _, fe := range verrs {
		field := fe.Field()
		if i := strings.IndexByte(field, '['); i >= 0 {
			field = field[:i]
		}
		if seen[field] {
			continue
		}
		seen[field] = true
		out.Add(field, messageFor(field, fe.Tag()))
	}
	return out
}

func messageFor(field, tag string) string {
	msgs, ok := fieldMessages[field]
	if !ok {
		return "Campo inválido"
	}
	if m, ok := msgs[tag]; ok {
		return m
	}
	return msgs[""]
}
