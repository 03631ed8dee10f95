package errors

import (
	"fmt"
)

type ErrorCode int

const (
	InternalError ErrorCode = iota
	InvalidConfiguration
	ContractViolation
	UnsupportedType
	ValueOutOfRange
	InvalidTextRepresentation
	NotRepresentable
	Int128Unsupported
	UntranslatableCharacter
	InvalidComment
	UnknownCommentOption
	InvalidValue
)

func NewInvalidConfigurationError(msg string) UnsafeRowError {
	return NewUnsafeRowErrorf(InvalidConfiguration, "Invalid configuration: %s", msg)
}

func NewContractViolationError(msg string) UnsafeRowError {
	return NewUnsafeRowErrorf(ContractViolation, "Contract violation: %s", msg)
}

func NewUnsupportedTypeError(typeName string) UnsafeRowError {
	return NewUnsafeRowErrorf(UnsupportedType, "Unsupported column type %s for unsaferow", typeName)
}

func NewValueOutOfRangeError(msg string) UnsafeRowError {
	return NewUnsafeRowErrorf(ValueOutOfRange, "Value out of range. %s", msg)
}

func NewInvalidTextRepresentationError(kind string, text string) UnsafeRowError {
	return NewUnsafeRowErrorf(InvalidTextRepresentation, "Invalid %s value: %q", kind, text)
}

func NewNotRepresentableError(msg string) UnsafeRowError {
	return NewUnsafeRowErrorf(NotRepresentable, "Value not representable: %s", msg)
}

func NewInt128UnsupportedError() UnsafeRowError {
	return NewUnsafeRowErrorf(Int128Unsupported, "128-bit integers are not supported by this encoder, numeric precision must be <= 18")
}

func NewUntranslatableCharacterError(encoding string, text string) UnsafeRowError {
	return NewUnsafeRowErrorf(UntranslatableCharacter, "Character in %q has no equivalent in encoding %s", text, encoding)
}

func NewInvalidCommentError(msg string) UnsafeRowError {
	return NewUnsafeRowErrorf(InvalidComment, "Invalid sql comment: %s", msg)
}

func NewUnknownCommentOptionError(option string) UnsafeRowError {
	return NewUnsafeRowErrorf(UnknownCommentOption, "Unknown parameter in sql comment: %s", option)
}

func NewInvalidValueError(msg string) UnsafeRowError {
	return NewUnsafeRowErrorf(InvalidValue, "Invalid value: %s", msg)
}

func NewUnsafeRowErrorf(errorCode ErrorCode, msgFormat string, args ...interface{}) UnsafeRowError {
	msg := fmt.Sprintf(fmt.Sprintf("URW%04d - %s", errorCode, msgFormat), args...)
	return UnsafeRowError{Code: errorCode, Msg: msg}
}

func NewUnsafeRowError(errorCode ErrorCode, msg string) UnsafeRowError {
	return UnsafeRowError{Code: errorCode, Msg: msg}
}

// UnsafeRowError is any error that is reported to the caller of the encoder. The code
// identifies the failure class, the message carries the offending value where there is one.
type UnsafeRowError struct {
	Code ErrorCode
	Msg  string
}

func (u UnsafeRowError) Error() string {
	return u.Msg
}

// CodeOf returns the code of the first UnsafeRowError in err's chain, or InternalError
// when there is none.
func CodeOf(err error) ErrorCode {
	var ue UnsafeRowError
	if As(err, &ue) {
		return ue.Code
	}
	return InternalError
}
