package users

type UserRepo interface {
	Upsert(user *User) error
	Delete(username string) error
	Get(username string) (*User, error)
	SetLastLogin(username string) error
}
