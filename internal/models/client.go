// Package models содержит структуры данных проверяемого API клуба
// (клиенты, типы абонементов, уведомления), а также внутренние модели
// отчётов о прогонах проверок.
package models

// Client представляет запись клиента, как её возвращает API клуба.
// Все даты приходят строками в формате 2006-01-02 и валидируются
// на стороне чекера.
type Client struct {
	ID             int    `json:"id" validate:"required,gt=0"`
	FullName       string `json:"full_name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone"`
	MembershipType string `json:"membership_type" validate:"required"`
	StartDate      string `json:"start_date" validate:"required,len=10"`
	PaymentDueDate string `json:"payment_due_date" validate:"required,len=10"`
	IsActive       bool   `json:"is_active"`
}

// DummyClient используется для формирования JSON-запроса на создание
// или обновление клиента.
type DummyClient struct {
	FullName       string `json:"full_name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone"`
	MembershipType string `json:"membership_type" validate:"required"`
	StartDate      string `json:"start_date" validate:"required,len=10"`
}

// MembershipType описывает тип абонемента из справочника клуба.
type MembershipType struct {
	Name          string `json:"name" validate:"required"`
	DurationMonth int    `json:"duration_months" validate:"required,gt=0"`
	Price         int    `json:"price" validate:"required,gt=0"`
}

// Notification описывает состояние почтового уведомления,
// поставленного в очередь на стороне API клуба.
type Notification struct {
	ID       string `json:"id" validate:"required"`
	ClientID int    `json:"client_id" validate:"required,gt=0"`
	Template string `json:"template" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=queued sent failed"`
}

// DummyNotification используется для запроса отправки уведомления клиенту.
type DummyNotification struct {
	Template string `json:"template" validate:"required"`
}
