package notification

import "fmt"

// Message is a rendered email ready for the Mailer.
type Message struct {
	Subject  string
	HTMLBody string
	TextBody string
}

// PasswordResetMessage builds the reset email. The link carries the
// plaintext token; the token itself is never logged or persisted as-is.
func PasswordResetMessage(name, resetLink string) Message {
	subject := "Password Reset Request"
	text := fmt.Sprintf(
		"Hi %s,\n\nWe received a request to reset your password. Open the link below to choose a new one:\n\n%s\n\nThe link expires in 10 minutes. If you did not request a reset, you can ignore this email.\n",
		name, resetLink)
	html := fmt.Sprintf(
		`<p>Hi %s,</p><p>We received a request to reset your password. Click the link below to choose a new one:</p><p><a href="%s">Reset your password</a></p><p>The link expires in 10 minutes. If you did not request a reset, you can ignore this email.</p>`,
		name, resetLink)
	return Message{Subject: subject, HTMLBody: html, TextBody: text}
}

// TaskAssignedMessage builds the fire-and-forget assignment notification.
func TaskAssignedMessage(assigneeName, taskTitle, assignerName, dueDate string) Message {
	subject := fmt.Sprintf("New task assigned: %s", taskTitle)
	text := fmt.Sprintf(
		"Hi %s,\n\n%s assigned you a new task: %q.\nDue date: %s\n\nLog in to accept it.\n",
		assigneeName, assignerName, taskTitle, dueDate)
	html := fmt.Sprintf(
		`<p>Hi %s,</p><p>%s assigned you a new task: <strong>%s</strong>.</p><p>Due date: %s</p><p>Log in to accept it.</p>`,
		assigneeName, assignerName, taskTitle, dueDate)
	return Message{Subject: subject, HTMLBody: html, TextBody: text}
}
