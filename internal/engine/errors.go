package engine

import "errors"

var (
	// ErrUnhandledBraKet is returned when an inner product has a label
	// outside the computational basis.
	ErrUnhandledBraKet = errors.New("unhandled bra-ket")

	// ErrUnsupportedExponent is returned by the operator-chain driver when a
	// power factor has a negative or non-integer exponent.
	ErrUnsupportedExponent = errors.New("unsupported exponent")

	// ErrMalformedTensor is returned when tensor products cannot be
	// factored or their widths do not line up.
	ErrMalformedTensor = errors.New("malformed tensor product")

	// ErrUnrecognizedOperator tags the fallback warning for operator forms
	// no rule applies to. It is never returned.
	ErrUnrecognizedOperator = errors.New("unrecognized operator")

	// ErrRecursionDepth is returned when a reduction nests deeper than the
	// configured limit.
	ErrRecursionDepth = errors.New("recursion depth exceeded")
)
