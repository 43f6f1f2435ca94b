package model

type User struct {
	ID       int
	Login    string
	Password string
}

type LoginInput struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}
