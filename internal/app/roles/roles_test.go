package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	t.Run("known roles pass through", func(t *testing.T) {
		assert.Equal(t, Admin, Parse("admin"))
		assert.Equal(t, Petugas, Parse("petugas"))
		assert.Equal(t, Peminjam, Parse("peminjam"))
	})

	t.Run("unknown and empty default to peminjam", func(t *testing.T) {
		assert.Equal(t, Peminjam, Parse(""))
		assert.Equal(t, Peminjam, Parse("superuser"))
		assert.Equal(t, Peminjam, Parse("ADMIN"))
	})
}

func TestValid(t *testing.T) {
	assert.True(t, Admin.Valid())
	assert.True(t, Petugas.Valid())
	assert.True(t, Peminjam.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("guest").Valid())
}

func TestLandingPath(t *testing.T) {
	assert.Equal(t, "/dashboard/admin", LandingPath(Admin))
	assert.Equal(t, "/dashboard/petugas/approvals", LandingPath(Petugas))
	assert.Equal(t, "/dashboard/peminjam/catalog", LandingPath(Peminjam))
	assert.Equal(t, "/login", LandingPath(Role("nonsense")))
}
