package roles

// Role determines which dashboard pages are reachable and where an
// authenticated user lands after login.
type Role string

const (
	Admin    Role = "admin"
	Petugas  Role = "petugas"
	Peminjam Role = "peminjam"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case Admin, Petugas, Peminjam:
		return true
	}
	return false
}

// Parse returns the Role for s, defaulting unknown values to Peminjam.
// The backend occasionally omits the role on login responses; the least
// privileged role is the safe default.
func Parse(s string) Role {
	r := Role(s)
	if !r.Valid() {
		return Peminjam
	}
	return r
}

// LandingPath maps a role to its dashboard landing page: admins get the
// admin home, petugas the approvals queue, peminjam the tool catalog.
func LandingPath(r Role) string {
	switch r {
	case Admin:
		return "/dashboard/admin"
	case Petugas:
		return "/dashboard/petugas/approvals"
	case Peminjam:
		return "/dashboard/peminjam/catalog"
	}
	return "/login"
}
