package entity

// Mail is an outbound email
type Mail struct {
	To       string
	Subject  string
	Text     string
	HTML     string
	Template string
}
