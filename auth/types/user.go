package types

// User is the local account a login resolves to. OAuth-only accounts carry
// no password hash; OAuth maps provider id to the external user id and each
// (provider, external id) pair belongs to at most one account.
type User struct {
	Login     string            `json:"login" dynamodbav:"login"`
	Email     string            `json:"email" dynamodbav:"email"`
	FirstName string            `json:"firstName" dynamodbav:"first_name"`
	LastName  string            `json:"lastName" dynamodbav:"last_name"`
	Password  string            `json:"-" dynamodbav:"password,omitempty"`
	Salt      string            `json:"-" dynamodbav:"salt,omitempty"`
	OAuth     map[string]string `json:"-" dynamodbav:"oauth,omitempty"`
}

func (u *User) HasPassword() bool {
	return u.Password != ""
}

type RegisterUser struct {
	Login     string `json:"login" binding:"required,min=4"`
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Password  string `json:"password" binding:"required,min=6"`
}

type LoginUser struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}
