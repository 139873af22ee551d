package entity

import (
	"database/sql/driver"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// HexBytes is stored as BYTEA and rendered as 0x-prefixed hex.
type HexBytes []byte

func (b HexBytes) String() string {
	return hexutil.Encode(b)
}

func (b HexBytes) MarshalText() ([]byte, error) {
	return hexutil.Bytes(b).MarshalText()
}

func (b *HexBytes) UnmarshalText(input []byte) error {
	return (*hexutil.Bytes)(b).UnmarshalText(input)
}

func (b HexBytes) Value() (driver.Value, error) {
	return []byte(b), nil
}

func (b *HexBytes) Scan(src interface{}) error {
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("can't scan %T into HexBytes", src)
	}
	*b = append((*b)[:0], raw...)
	return nil
}
