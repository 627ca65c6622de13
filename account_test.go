package corebank_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okonkwo/corebank"
)

func TestNewAccountNumber(t *testing.T) {
	as := assert.New(t)
	reqrd := require.New(t)

	seen := make(map[int64]struct{})
	for i := 0; i < 1000; i++ {
		num, err := corebank.NewAccountNumber(21)
		reqrd.NoError(err)
		as.GreaterOrEqual(num, int64(2_100_000_000))
		as.Less(num, int64(2_200_000_000))
		seen[num] = struct{}{}
	}
	// 1000 draws from a 1e8 space should essentially never all collide
	as.Greater(len(seen), 990)
}
