package evaluation

import (
	"errors"

	"imbalancecv/internal/preprocessing"
)

var (
	ErrAlignment      = preprocessing.ErrAlignment
	ErrInvalidFolds   = errors.New("invalid number of folds")
	ErrUnknownScoring = errors.New("unknown scoring mode")
	ErrEmptyGrid      = errors.New("parameter grid is empty")
	ErrDuplicateKey   = errors.New("duplicate parameter combination")
)
