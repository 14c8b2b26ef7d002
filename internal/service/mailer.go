package service

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer delivers verification and password-reset codes over SMTP. Sending
// is best-effort: callers log a failed send and carry on, a broken mail
// server must never roll back a registration.
type Mailer struct {
	host     string
	port     int
	sender   string
	password string
}

func NewMailer() *Mailer {
	return &Mailer{
		host:     viper.GetString("mail.host"),
		port:     viper.GetInt("mail.port"),
		sender:   viper.GetString("mail.sender"),
		password: viper.GetString("mail.password"),
	}
}

func (m *Mailer) SendVerificationMail(sendTo, code string) error {
	body := fmt.Sprintf(
		"Welcome to the Event Prediction System!<br><br>"+
			"Your verification code is: <b>%s</b><br><br>"+
			"This code will expire in 1 hour. If you did not register, ignore this email.", code)

	return m.send(sendTo, "Verify your email", body)
}

func (m *Mailer) SendPasswordResetMail(sendTo, code string) error {
	body := fmt.Sprintf(
		"You have requested to reset your password.<br><br>"+
			"Your verification code is: <b>%s</b><br><br>"+
			"This code will expire in 1 hour. If you did not request a reset, ignore this email.", code)

	return m.send(sendTo, "Password reset request", body)
}

func (m *Mailer) send(sendTo, subject, body string) error {
	if sendTo == m.sender {
		return fmt.Errorf("invalid email address")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", sendTo)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.host, m.port, m.sender, m.password)

	if err := d.DialAndSend(msg); err != nil {
		return err
	}

	zap.L().Debug("Mail sent", zap.String("subject", subject))
	return nil
}
