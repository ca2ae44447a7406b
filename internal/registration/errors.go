package registration

import (
	"errors"
	"fmt"
)

var (
	ErrNoPublicKey = errors.New("no public key loaded")
	ErrEmptyToken  = errors.New("empty token in response")
)

// Step — шаг регистрации, на котором произошла ошибка.
type Step string

const (
	StepProbe    Step = "probe"
	StepEncrypt  Step = "encrypt"
	StepRegister Step = "register"
	StepToken    Step = "token"
)

type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("registration %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// FailedStep — шаг из цепочки ошибок; пусто, если это не *StepError.
func FailedStep(err error) Step {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return ""
}
