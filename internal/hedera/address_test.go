package hedera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTokenID(t *testing.T) {
	id, err := ParseTokenID("0.0.731861")
	require.NoError(t, err)
	assert.Equal(t, TokenID{Shard: 0, Realm: 0, Num: 731861}, id)

	_, err = ParseTokenID("731861")
	assert.Error(t, err)

	_, err = ParseTokenID("0.0.abc")
	assert.Error(t, err)
}

func TestEVMAddress(t *testing.T) {
	t.Run("LongZero", func(t *testing.T) {
		addr, err := EVMAddress("0.0.731861")
		require.NoError(t, err)
		// 731861 = 0xB2AD5
		assert.Equal(t, "0x00000000000000000000000000000000000b2ad5", addr.Hex())
	})

	t.Run("HexPassthrough", func(t *testing.T) {
		addr, err := EVMAddress("0x00000000000000000000000000000000000b2ad5")
		require.NoError(t, err)
		assert.Equal(t, "0x00000000000000000000000000000000000b2ad5", addr.Hex())
	})

	t.Run("ShortHexRejected", func(t *testing.T) {
		_, err := EVMAddress("0xb2ad5")
		assert.Error(t, err)
	})

	t.Run("GarbageRejected", func(t *testing.T) {
		_, err := EVMAddress("WHBAR")
		assert.Error(t, err)
	})
}

func TestNativeSet(t *testing.T) {
	native, err := NewNativeSet([]string{"0.0.15058", "0.0.1456986"})
	require.NoError(t, err)

	assert.True(t, native.Contains("0.0.15058"))
	assert.True(t, native.Contains("0.0.1456986"))
	assert.False(t, native.Contains("0.0.731861"))
	assert.Equal(t, "0.0.15058", native.Canonical())

	_, err = NewNativeSet(nil)
	assert.Error(t, err)

	_, err = NewNativeSet([]string{"garbage"})
	assert.Error(t, err)
}
