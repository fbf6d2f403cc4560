package domain

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleAgency    Role = "AGENCY"
	RolePassenger Role = "PASSENGER"
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     Role   `json:"role"`
}
