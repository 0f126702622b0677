package rabbitmq

// AlertsExchange exchange, в который чекер публикует провалы проверок.
const AlertsExchange = "alerts"

// Маршрутизация сообщений об ошибках проверок.
const (
	FailureQueue      = "alerts.failures"
	FailureRoutingKey = "failure"
)

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetAlertQueues возвращает очереди, которые должны существовать
// до старта чекера и воркера оповещений.
func GetAlertQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: FailureQueue, RoutingKey: FailureRoutingKey},
	}
}
