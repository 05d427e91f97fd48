package model

// User is the signed-in identity. Authentication is mocked, so no secret is kept.
type User struct {
	Name  string `toml:"name" json:"name"`
	Email string `toml:"email" json:"email"`
}
