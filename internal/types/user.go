package types

// User is the public identity of an account. The password hash never leaves the auth package.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
