// Package queue defines the notification payloads exchanged over the
// message broker and the background consumer that delivers them.
package queue

// NotificationQueueName is the durable queue carrying outbound email
// notifications.
const NotificationQueueName = "notification.email"

// Notification kinds understood by the consumer.
const (
	KindTaskAssigned    = "task.assigned"
	KindProjectAssigned = "project.assigned"
)

// NotificationEvent is published best-effort whenever a mutation
// affects a user who should hear about it. It carries everything the
// consumer needs to render and send the email without querying the
// primary database.
type NotificationEvent struct {
	ID             string `json:"id"` // uuid, for log correlation
	Kind           string `json:"kind"`
	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name"`
	ActorName      string `json:"actor_name"`
	ProjectTitle   string `json:"project_title"`
	TaskTitle      string `json:"task_title,omitempty"`
	CreatedAt      string `json:"created_at"`
}
