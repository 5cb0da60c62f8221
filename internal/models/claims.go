package models

import "github.com/golang-jwt/jwt/v5"

// Roles carried in access tokens.
const (
	RolePatient  = "patient"
	RoleHospital = "hospital"
	RoleAdmin    = "admin"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID     string `json:"user_id"`
	Role       string `json:"role"`
	HospitalID string `json:"hospital_id,omitempty"`
}

func (c *UserClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// ActsFor reports whether the caller may act on behalf of the given hospital.
func (c *UserClaims) ActsFor(hospitalID string) bool {
	if c.IsAdmin() {
		return true
	}
	return c.Role == RoleHospital && c.HospitalID != "" && c.HospitalID == hospitalID
}
