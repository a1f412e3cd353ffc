package service

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Age      *int
	Role     string // empty means student
}

// CreateChildInput is a parent's request to add a child account.
type CreateChildInput struct {
	ParentUsername string
	ChildUsername  string
	ChildAge       *int
	ChildPassword  string
}
