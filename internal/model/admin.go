package model

import "time"

// Admin is a curriculum administrator who may import, export or clear
// the conversion tables, depending on Permissions.
type Admin struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Permissions  []string  `json:"permissions"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Can reports whether the stored permission set grants p.
func (a *Admin) Can(p Permission) bool {
	for _, code := range a.Permissions {
		if code == string(p) {
			return true
		}
	}
	return false
}

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// AdminLoginResponse carries the bearer token and the permissions baked into it.
type AdminLoginResponse struct {
	Token       string   `json:"token"`
	Admin       Admin    `json:"admin"`
	Permissions []string `json:"permissions"`
}

// AdminProfile is what /auth/admin/me returns. Permissions come from the
// token, which may lag behind the stored set until the next login.
type AdminProfile struct {
	Admin          *Admin    `json:"admin"`
	Permissions    []string  `json:"permissions"`
	TokenExpiresAt time.Time `json:"token_expires_at"`
}
