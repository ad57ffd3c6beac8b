package healthsync

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/pubsub"
	"github.com/gin-gonic/gin"
	"github.com/ventiam/ventiam_backend/config"
)

type pushEnvelope struct {
	Message struct {
		Data      []byte `json:"data"`
		MessageId string `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// PubSubPushHandler accepts push-style delivery from the import subscription.
// Always 204: a retryable failure is retried through idempotency + pub/sub
// redelivery, not an error status that would stall the subscription.
func PubSubPushHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !envBoolDefault("ENABLE_IMPORT_PUBSUB_PUSH_ENDPOINT", true) {
			c.Status(204)
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(204)
			return
		}

		var envelope pushEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			c.Status(204)
			return
		}

		var payload config.ImportJobMessage
		if err := json.Unmarshal(envelope.Message.Data, &payload); err != nil {
			c.Status(204)
			return
		}
		if payload.JobId == "" || payload.UserId == 0 {
			c.Status(204)
			return
		}

		_ = ProcessImportJob(c.Request.Context(), payload)
		c.Status(204)
	}
}

// RunSubscriber pulls import jobs when push delivery is not configured.
// Blocks until ctx is cancelled.
func RunSubscriber(ctx context.Context) error {
	client, err := config.GetClient(ctx)
	if err != nil {
		return err
	}

	topicName := strings.TrimSpace(os.Getenv("PUBSUB_IMPORT_TOPIC"))
	if topicName == "" {
		topicName = "health-import"
	}
	subName := strings.TrimSpace(os.Getenv("PUBSUB_IMPORT_SUBSCRIPTION"))
	if subName == "" {
		subName = topicName + "-worker"
	}

	topic, err := config.CreateTopicIfNotExists(client, topicName)
	if err != nil {
		return err
	}
	sub, err := config.CreateSubscriptionIfNotExists(client, subName, topic)
	if err != nil {
		return err
	}

	return sub.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		var payload config.ImportJobMessage
		if err := json.Unmarshal(m.Data, &payload); err != nil {
			m.Ack()
			return
		}
		if err := ProcessImportJob(ctx, payload); err != nil {
			m.Nack()
			return
		}
		m.Ack()
	})
}

func envBoolDefault(key string, def bool) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch val {
	case "true", "1", "yes", "y", "on":
		return true
	case "false", "0", "no", "n", "off":
		return false
	default:
		return def
	}
}
