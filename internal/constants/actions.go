package constants

const (
	Create      = "CREATE"
	Update      = "UPDATE"
	Delete      = "DELETE"
	AssignBooks = "ASSIGN_BOOKS"
)
