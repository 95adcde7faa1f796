package accountroles

import (
	"testing"

	"spl-token-indexer-sol/internal/logic/core"
	"spl-token-indexer-sol/internal/logic/decoder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var resolved = []string{"A0", "A1", "A2", "A3", "A4", "A5", "A6"}

func decode(t *testing.T, data ...byte) *decoder.Descriptor {
	t.Helper()
	desc, err := decoder.Decode(data)
	require.NoError(t, err)
	return desc
}

func TestAssignRoles_Revoke(t *testing.T) {
	got, err := AssignRoles(decode(t, 5), []byte{4, 5, 6}, resolved)
	require.NoError(t, err)
	assert.Equal(t, core.InputAccounts{
		Account:        "A4",
		Owner:          "A5",
		SignerAccounts: []string{"A6"},
	}, got)
}

func TestAssignRoles_TransferChecked(t *testing.T) {
	data := append([]byte{12}, make([]byte, 9)...)
	got, err := AssignRoles(decode(t, data...), []byte{0, 1, 2, 3}, resolved)
	require.NoError(t, err)
	assert.Equal(t, "A0", got.Source)
	assert.Equal(t, "A1", got.Mint)
	assert.Equal(t, "A2", got.Destination)
	assert.Equal(t, "A3", got.Authority)
	assert.Empty(t, got.SignerAccounts)
}

func TestAssignRoles_FewerAccountsThanRoles(t *testing.T) {
	// InitializeAccount 固定 4 个角色，只给 2 个账户
	got, err := AssignRoles(decode(t, 1), []byte{2, 3}, resolved)
	require.NoError(t, err)
	assert.Equal(t, core.InputAccounts{Account: "A2", Mint: "A3"}, got)
}

func TestAssignRoles_Unknown(t *testing.T) {
	got, err := AssignRoles(decode(t, 200), []byte{0, 1}, resolved)
	require.NoError(t, err)
	assert.Equal(t, core.InputAccounts{}, got)

	_, err = AssignRoles(decode(t, 200), []byte{99}, resolved)
	assert.ErrorIs(t, err, core.ErrUnresolvedAccountIndex)
}

func TestAssignRoles_IndexOutOfRange(t *testing.T) {
	_, err := AssignRoles(decode(t, 5), []byte{0, 7}, resolved)
	assert.ErrorIs(t, err, core.ErrUnresolvedAccountIndex)
}

func TestAssignRoles_Reallocate(t *testing.T) {
	got, err := AssignRoles(decode(t, 29), []byte{0, 1, 2, 3, 4, 5}, resolved)
	require.NoError(t, err)
	assert.Equal(t, core.InputAccounts{
		Account:                  "A0",
		Payer:                    "A1",
		FundRelocationSysProgram: "A2",
		Owner:                    "A3",
		SignerAccounts:           []string{"A4", "A5"},
	}, got)
}
