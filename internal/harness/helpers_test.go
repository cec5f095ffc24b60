package harness

import "github.com/slayermass/stateform/internal/validator"

func requiredMin(min float64) validator.Options {
	return validator.Options{Required: true, Min: validator.Float(min)}
}

func requiredMinLength(n int) validator.Options {
	return validator.Options{Required: true, MinLength: validator.Int(n)}
}
