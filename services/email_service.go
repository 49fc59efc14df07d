package services

import (
	"fmt"
	"time"

	"financeApp/config"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

// EmailService предоставляет методы для отправки email
type EmailService struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailService создает новый экземпляр EmailService
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		dialer: dialer,
		from:   cfg.SMTP.From,
	}
}

// SendEmail отправляет email
func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("ошибка отправки email: %v", err)
	}

	return nil
}

// SendPaymentReceipt отправляет квитанцию о платеже по долгу
func (s *EmailService) SendPaymentReceipt(to, debtName string, amount, newBalance decimal.Decimal) error {
	subject := "Квитанция о платеже по долгу"
	body := fmt.Sprintf(`
		<h2>Платеж принят</h2>
		<p>Долг: %s</p>
		<p>Сумма платежа: %s</p>
		<p>Остаток долга: %s</p>
		<p>Дата: %s</p>
	`, debtName, amount.StringFixed(2), newBalance.StringFixed(2), time.Now().Format("02.01.2006 15:04:05"))

	return s.SendEmail(to, subject, body)
}

// SendDebtPaidNotification отправляет уведомление о полном погашении долга
func (s *EmailService) SendDebtPaidNotification(to, debtName string) error {
	subject := "Поздравляем! Ваш долг полностью погашен"
	body := fmt.Sprintf(`
		<h2>Поздравляем!</h2>
		<p>Ваш долг «%s» полностью погашен.</p>
		<p>Загляните в сводку, чтобы выбрать следующую цель досрочного погашения.</p>
	`, debtName)

	return s.SendEmail(to, subject, body)
}

// SendDueReminder отправляет напоминание о приближающемся платеже
func (s *EmailService) SendDueReminder(to, debtName string, dueDate time.Time) error {
	subject := "Напоминание о платеже по долгу"
	body := fmt.Sprintf(`
		<h2>Приближается дата платежа</h2>
		<p>Долг: %s</p>
		<p>Дата платежа: %s</p>
	`, debtName, dueDate.Format("02.01.2006"))

	return s.SendEmail(to, subject, body)
}
