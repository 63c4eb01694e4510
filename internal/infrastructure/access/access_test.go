package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-house/internal/domain"
)

func TestOwnable(t *testing.T) {
	o := NewOwnable("alice")

	assert.Equal(t, domain.Address("alice"), o.Owner())
	assert.NoError(t, o.Require("alice"))
	assert.ErrorIs(t, o.Require("bob"), domain.ErrUnauthorized)

	assert.ErrorIs(t, o.TransferOwnership("bob", "bob"), domain.ErrUnauthorized)
	require.NoError(t, o.TransferOwnership("alice", "bob"))
	assert.Equal(t, domain.Address("bob"), o.Owner())
	assert.ErrorIs(t, o.Require("alice"), domain.ErrUnauthorized)
}

func TestUpgradeManager(t *testing.T) {
	m := NewUpgradeManager("deployer")

	assert.Equal(t, domain.Address("deployer"), m.Identity())
	assert.False(t, m.IsAuthorizedUpgrade("1.0.0", "2.0.0"))

	m.RegisterUpgrade("1.0.0", "2.0.0")
	assert.True(t, m.IsAuthorizedUpgrade("1.0.0", "2.0.0"))
	assert.False(t, m.IsAuthorizedUpgrade("2.0.0", "1.0.0"), "downgrades are not implied")
}
