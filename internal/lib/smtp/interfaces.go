// Package smtp отправляет письма через SMTP-сервер с STARTTLS и PLAIN-авторизацией.
package smtp

import "io"

// Client — используемая часть *smtp.Client.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface открывает соединения с SMTP-сервером.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
