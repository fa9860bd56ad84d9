package models

type User struct {
	Username     string
	PasswordHash string
	Role         string
}
