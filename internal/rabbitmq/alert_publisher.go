package rabbitmq

import (
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gymclub-checker/internal/models"
)

// AlertPublisher публикует оповещения о провалах проверок в exchange
// оповещений.
type AlertPublisher struct {
	ch *amqp.Channel
}

// NewAlertPublisher создает издателя поверх открытого канала.
func NewAlertPublisher(ch *amqp.Channel) *AlertPublisher {
	return &AlertPublisher{ch: ch}
}

// Publish отправляет сообщение о провале в очередь оповещений.
func (p *AlertPublisher) Publish(alert models.AlertMessage) error {
	return PublishMessage(p.ch, AlertsExchange, FailureRoutingKey, alert)
}
