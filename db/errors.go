package db

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrMissingConfig = errors.New("postgres config is not specified")
)

func IgnoreErrNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
