package services

import (
	"errors"
	"log"
	"time"

	"financeApp/models"
	"financeApp/utils"

	"gorm.io/gorm"
)

// ReminderScheduler периодически помечает просроченные долги и
// рассылает напоминания о приближающихся платежах
type ReminderScheduler struct {
	db    *gorm.DB
	email *EmailService
}

// NewReminderScheduler создает новый экземпляр ReminderScheduler
func NewReminderScheduler(db *gorm.DB, email *EmailService) *ReminderScheduler {
	return &ReminderScheduler{
		db:    db,
		email: email,
	}
}

// Start запускает фоновые обработчики
func (s *ReminderScheduler) Start() {
	// Помечаем просроченные долги каждый час
	overdueTicker := time.NewTicker(1 * time.Hour)
	go func() {
		for range overdueTicker.C {
			if err := s.markOverdueDebts(); err != nil {
				log.Printf("Ошибка при обработке просроченных долгов: %v", err)
			}
		}
	}()

	// Напоминания о приближающихся платежах раз в сутки
	reminderTicker := time.NewTicker(24 * time.Hour)
	go func() {
		for range reminderTicker.C {
			if err := s.sendDueReminders(); err != nil {
				log.Printf("Ошибка при отправке напоминаний: %v", err)
			}
		}
	}()
}

// markOverdueDebts помечает активные долги с прошедшей датой платежа
func (s *ReminderScheduler) markOverdueDebts() error {
	result := s.db.Model(&models.Debt{}).
		Where("is_active = ? AND is_overdue = ? AND due_date IS NOT NULL AND due_date < ?", true, false, time.Now()).
		Update("is_overdue", true)
	if result.Error != nil {
		return errors.New("ошибка при пометке просроченных долгов")
	}

	if result.RowsAffected > 0 {
		utils.LogInfo("Помечено просроченных долгов: %d", result.RowsAffected)
	}
	return nil
}

// sendDueReminders отправляет напоминания по долгам, платеж по которым
// наступает в ближайшие три дня
func (s *ReminderScheduler) sendDueReminders() error {
	deadline := time.Now().AddDate(0, 0, 3)

	var debts []models.Debt
	if err := s.db.Preload("User").
		Where("is_active = ? AND due_date IS NOT NULL AND due_date BETWEEN ? AND ?", true, time.Now(), deadline).
		Find(&debts).Error; err != nil {
		return errors.New("ошибка при поиске долгов с приближающимся платежом")
	}

	for _, debt := range debts {
		if debt.DueDate == nil || debt.User.Email == "" {
			continue
		}
		if err := s.email.SendDueReminder(debt.User.Email, debt.Name, *debt.DueDate); err != nil {
			log.Printf("Не удалось отправить напоминание по долгу %d: %v", debt.ID, err)
		}
	}

	return nil
}
