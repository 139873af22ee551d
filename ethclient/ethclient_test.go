package ethclient

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/stretchr/testify/require"
)

type testRPCError struct{}

func (testRPCError) Error() string  { return "header not found" }
func (testRPCError) ErrorCode() int { return -32000 }

func TestClassifyError(t *testing.T) {
	t.Parallel()

	err := classifyError("can't get block 10", ethereum.NotFound)
	require.ErrorIs(t, err, ErrBlockNotFound)
	require.NotErrorIs(t, err, ErrConnectivity)

	cause := errors.New("connection refused")
	err = classifyError("can't get latest block number", cause)
	require.ErrorIs(t, err, ErrConnectivity)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, ErrBlockNotFound)
}

func TestErrorStatus(t *testing.T) {
	t.Parallel()

	require.Equal(t, "ok", errorStatus(nil))
	require.Equal(t, "timeout", errorStatus(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
	require.Equal(t, "not_found", errorStatus(ethereum.NotFound))
	require.Equal(t, "error--32000-header not found", errorStatus(testRPCError{}))
	require.Equal(t, "error", errorStatus(errors.New("eof")))
}
