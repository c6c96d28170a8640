package events

import (
	"encoding/json"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const correlationIDKey = "correlation_id"

// CorrelationIDMiddleware ensures every message carries a correlation id and
// attaches a logger scoped to it.
func CorrelationIDMiddleware(logger zerolog.Logger) message.HandlerMiddleware {
	return func(next message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			correlationID := msg.Metadata.Get(correlationIDKey)
			if correlationID == "" {
				correlationID = uuid.NewString()
				msg.Metadata.Set(correlationIDKey, correlationID)
			}

			scoped := logger.With().
				Str("correlation_id", correlationID).
				Str("message_uuid", msg.UUID).
				Logger()
			msg.SetContext(scoped.WithContext(msg.Context()))

			return next(msg)
		}
	}
}

// LoggingMiddleware logs each handled message and any handling error.
func LoggingMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		logger := zerolog.Ctx(msg.Context())
		logger.Debug().
			RawJSON("payload", msg.Payload).
			Msg("handling message")

		messages, err := next(msg)
		if err != nil {
			logger.Err(err).
				RawJSON("payload", msg.Payload).
				Msg("message handling failed")
		}
		return messages, err
	}
}

// SkipMarshallingErrorsMiddleware drops malformed payloads instead of letting
// the retry middleware loop on them forever.
func SkipMarshallingErrorsMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		messages, err := next(msg)
		if err != nil {
			var jsonErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &jsonErr) || errors.As(err, &typeErr) {
				zerolog.Ctx(msg.Context()).Err(err).Msg("dropping malformed message")
				return nil, nil
			}
		}
		return messages, err
	}
}
