package shell

import (
	"errors"
	"strconv"

	"livraria/internal/validate"
)

func requiredCheck(s string) error {
	if _, ok := validate.Required(s); !ok {
		return errors.New("campo obrigatório")
	}
	return nil
}

func yearCheck(s string) error {
	if _, ok := validate.Year(s); !ok {
		return errors.New("ano inválido")
	}
	return nil
}

func priceCheck(s string) error {
	if _, ok := validate.Price(s); !ok {
		return errors.New("preço inválido, informe um número >= 0")
	}
	return nil
}

func idCheck(s string) error {
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return errors.New("ID inválido")
	}
	return nil
}

// optional accepts an empty answer.
func optional(check func(string) error) func(string) error {
	return func(s string) error {
		if s == "" {
			return nil
		}
		return check(s)
	}
}
