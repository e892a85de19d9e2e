package entity

type ContactMessage struct {
	ID        int64     `json:"id,omitempty"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt Timestamp `json:"created_at,omitempty"`
}

type ContactPage struct {
	Items      []ContactMessage
	Pagination *Pagination
}
