package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	SendWelcomeEmailTaskName  = "sendWelcomeEmailTask"
	SendWelcomeEmailQueueName = "sendEmailQueue"
)

type SendWelcomeEmail struct {
	Email string `json:"email"`
}

func NewSendWelcomeEmailTask(email string) (*asynq.Task, error) {
	var data SendWelcomeEmail
	data.Email = email

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("json data marshal failed: %w", err)
	}

	return asynq.NewTask(
		SendWelcomeEmailTaskName,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue(SendWelcomeEmailQueueName),
	), nil
}
