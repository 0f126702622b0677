// Package alertsender реализует отправку почтовых оповещений о провалах
// проверок, потребляемых из очереди RabbitMQ.
package alertsender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/gymclub-checker/internal/config"
	"github.com/magabrotheeeer/gymclub-checker/internal/lib/sl"
	"github.com/magabrotheeeer/gymclub-checker/internal/lib/smtp"
	"github.com/magabrotheeeer/gymclub-checker/internal/models"
)

// Service отправляет письма о провалах проверок на адрес дежурного.
type Service struct {
	transport  smtp.TransportInterface
	alertEmail string
	log        *slog.Logger
}

// New создает сервис оповещений.
func New(cfg *config.Config, log *slog.Logger, transport smtp.TransportInterface) *Service {
	return &Service{
		transport:  transport,
		alertEmail: cfg.AlertEmail,
		log:        log,
	}
}

// SendCheckFailure разбирает сообщение о провале проверки и отправляет
// письмо. Используется как обработчик consumer'а RabbitMQ.
func (s *Service) SendCheckFailure(body []byte) error {
	var message models.AlertMessage
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal alert message", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := fmt.Sprintf("Провал проверки API клуба: %s / %s", message.Suite, message.Name)
	bodyText := fmt.Sprintf(`Проверка API клуба провалилась.

Цель:     %s
Сьют:     %s
Проверка: %s
Прогон:   %s
Время:    %s

Детали:
%s`,
		message.Target, message.Suite, message.Name,
		message.RunUID, message.At.Format("2006-01-02 15:04:05 MST"),
		message.Details)

	return s.sendEmail([]string{s.alertEmail}, subject, bodyText)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("alert email sent", "to", to, "subject", subject)
	return nil
}
