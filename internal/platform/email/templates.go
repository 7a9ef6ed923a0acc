package email

import (
	"fmt"
	"html"
)

// WelcomeMessage is sent after a user registers.
func WelcomeMessage(toAddress, name string) Message {
	return Message{
		ToAddress: toAddress,
		ToName:    name,
		Subject:   "Thanks for joining in!",
		PlainText: fmt.Sprintf("Welcome to the app, %s. Let us know how you get along with it.", name),
		HTML: fmt.Sprintf("<p>Welcome to the app, <strong>%s</strong>.</p><p>Let us know how you get along with it.</p>",
			html.EscapeString(name)),
	}
}

// CancellationMessage is sent after a user deletes their account.
func CancellationMessage(toAddress, name string) Message {
	return Message{
		ToAddress: toAddress,
		ToName:    name,
		Subject:   "Sorry to see you go!",
		PlainText: fmt.Sprintf("Goodbye, %s. Is there anything we could have done to keep you around?", name),
		HTML: fmt.Sprintf("<p>Goodbye, <strong>%s</strong>.</p><p>Is there anything we could have done to keep you around?</p>",
			html.EscapeString(name)),
	}
}
