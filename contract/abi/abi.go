package abi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var ErrInvalidCall = errors.New("invalid call data")

const selectorLength = 4

type ABI struct {
	abi.ABI
}

func MustReadABI(rawJSON string) ABI {
	res, err := abi.JSON(strings.NewReader(rawJSON))
	if err != nil {
		panic(err)
	}
	return ABI{res}
}

func (a ABI) AllMethods() map[string]bool {
	methods := make(map[string]bool, len(a.Methods))
	for _, m := range a.Methods {
		methods[m.Name] = true
	}
	return methods
}

// ParseCall resolves the method by its 4-byte selector and unpacks the arguments that follow it.
func (a ABI) ParseCall(data []byte) (string, map[string]interface{}, error) {
	if len(data) < selectorLength {
		return "", nil, fmt.Errorf("%w: %d bytes is too short for a method selector", ErrInvalidCall, len(data))
	}
	method, err := a.MethodById(data[:selectorLength])
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrInvalidCall, err)
	}
	values := make(map[string]interface{}, len(method.Inputs))
	if err = method.Inputs.UnpackIntoMap(values, data[selectorLength:]); err != nil {
		return "", nil, fmt.Errorf("%w: can't unpack %s arguments: %s", ErrInvalidCall, method.Name, err)
	}
	return method.Name, values, nil
}
