package queue

import "encoding/json"

// Cleanup message types understood by the worker.
const (
	TypeDeleteIdentity = "delete_identity"
	TypeDeleteImage    = "delete_image"
)

// CleanupJob names one external resource left behind by a deleted
// principal: a provider account id or a CDN image public id.
type CleanupJob struct {
	Ref string `json:"ref"`
}

// NewCleanup wraps a cleanup job into a queue message.
func NewCleanup(msgType, ref string) Message {
	body, _ := json.Marshal(CleanupJob{Ref: ref})
	return Message{Type: msgType, Body: body}
}

// ParseCleanup decodes a cleanup job from a message body.
func ParseCleanup(msg Message) (CleanupJob, error) {
	var job CleanupJob
	err := json.Unmarshal(msg.Body, &job)
	return job, err
}
