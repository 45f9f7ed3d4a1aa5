package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/catalog-backend/pkg/tasks"
)

const registrationSubject = "Successfully signed up"

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// RegistrationEmail builds the welcome message for a newly registered user.
func RegistrationEmail(renderer *Renderer, email, username string) (Message, error) {
	html, err := renderer.Render("registration.html", struct{ Username string }{Username: username})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      email,
		Subject: registrationSubject,
		Text:    fmt.Sprintf("Hi %s! You have successfully signed up to the Stores REST API.", username),
		HTML:    html,
	}, nil
}

// RegistrationHandler handles tasks.SendUserRegistrationEmail (args: email, username).
func RegistrationHandler(sender Sender, renderer *Renderer) (tasks.Handler, error) {
	if sender == nil {
		return nil, errors.New("mail sender is required")
	}
	if renderer == nil {
		return nil, errors.New("template renderer is required")
	}
	return func(ctx context.Context, env tasks.Envelope) error {
		args, err := env.StringArgs(2)
		if err != nil {
			return err
		}
		msg, err := RegistrationEmail(renderer, args[0], args[1])
		if err != nil {
			return err
		}
		return sender.Send(ctx, msg)
	}, nil
}
